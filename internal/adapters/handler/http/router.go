package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/innerflow/flow-engine/internal/adapters/handler/http/middleware"
	"github.com/innerflow/flow-engine/internal/core/services"
)

type APIRouterDependencies struct {
	AuthHandler     *AuthHandler
	LogHandler      *LogHandler
	ProfileHandler  *ProfileHandler
	StatsHandler    *StatsHandler
	AnalysisHandler *AnalysisHandler
	TokenService    *services.TokenService
	DB              *sqlx.DB
	Redis           *redis.Client
	StartTime       time.Time
}

// NewAPIRouter assembles the client-facing CRUD surface.
func NewAPIRouter(deps APIRouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(corsMiddleware())

	if deps.Redis != nil {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, 100, 1*time.Minute))
	}

	router.GET("/health", healthHandler(deps.DB, deps.Redis, deps.StartTime))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.LogHandler.RegisterRoutes(protected)
		deps.ProfileHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
		deps.AnalysisHandler.RegisterRoutes(protected)
	}

	return router
}

type BatchRouterDependencies struct {
	BatchHandler *BatchHandler
	Redis        *redis.Client
}

// NewBatchRouter assembles the scheduler-facing analysis trigger
// surface. No auth: the deployment fronts it with network controls.
func NewBatchRouter(deps BatchRouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(corsMiddleware())

	if deps.Redis != nil {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, 30, 1*time.Minute))
	}

	deps.BatchHandler.RegisterRoutes(router)

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func healthHandler(db *sqlx.DB, rdb *redis.Client, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "connected"
		if err := db.Ping(); err != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "connected"
		if rdb == nil || rdb.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "unreachable"
		}

		statusCode := 200
		if dbStatus == "unreachable" {
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(startTime).String(),
		})
	}
}
