package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/innerflow/flow-engine/internal/adapters/cache"
	adapterHTTP "github.com/innerflow/flow-engine/internal/adapters/handler/http"
	"github.com/innerflow/flow-engine/internal/adapters/repository"
	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/innerflow/flow-engine/internal/core/services"
)

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dbHost := getenvDefault("DB_HOST", "localhost")
	dbPort := getenvDefault("DB_PORT", "5432")
	serverPort := getenvDefault("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET must be set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisClient := connectRedis()

	userRepo := repository.NewPostgresUserRepository(db)
	analysisRepo := repository.NewPostgresAnalysisRepository(db)

	var logRepo domain.DailyLogRepository = repository.NewPostgresDailyLogRepository(db)
	if redisClient != nil {
		logRepo = repository.NewCachedDailyLogRepository(logRepo, redisClient)
	}

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, "innerflow", 24*time.Hour, userRepo)
	logService := services.NewLogService(logRepo)
	profileService := services.NewProfileService(userRepo)
	statsService := services.NewStatsService(logRepo)
	// The API only serves stored analyses; the LLM client lives in the
	// analysis binary.
	analysisService := services.NewAnalysisService(userRepo, logRepo, analysisRepo, nil, nil)

	router := adapterHTTP.NewAPIRouter(adapterHTTP.APIRouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		LogHandler:      adapterHTTP.NewLogHandler(logService),
		ProfileHandler:  adapterHTTP.NewProfileHandler(profileService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		AnalysisHandler: adapterHTTP.NewAnalysisHandler(analysisService),
		TokenService:    tokenService,
		DB:              db,
		Redis:           redisClient,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("InnerFlow API running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}

// connectRedis is best effort. The API works without a cache, so a
// missing or unreachable Redis only costs read performance.
func connectRedis() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		log.Println("REDIS_HOST not set, running without cache.")
		return nil
	}

	port := getenvDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	dbIndex := intEnvDefault("REDIS_DB", 0)

	client, err := cache.NewRedisClient(host, port, password, dbIndex)
	if err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
		return nil
	}

	log.Println("Redis connected successfully.")
	return client
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnvDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
