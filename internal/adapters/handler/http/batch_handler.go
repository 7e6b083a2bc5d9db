package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/innerflow/flow-engine/internal/core/services"
)

// BatchHandler is the HTTP trigger surface of the analysis service.
// It is invoked by a scheduler, not by end users, and always answers
// with the {success, message, ...} envelope.
type BatchHandler struct {
	svc *services.AnalysisService
}

func NewBatchHandler(svc *services.AnalysisService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

type batchRequest struct {
	UserIDs []string `json:"userIds"`
}

func (h *BatchHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.POST("/test", h.Test)
	router.POST("/weeklyAnalysis", h.runHandler(domain.AnalysisWeekly))
	router.POST("/monthlyAnalysis", h.runHandler(domain.AnalysisMonthly))
}

func (h *BatchHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "InnerFlow analysis service is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": []string{
			"/test",
			"/weeklyAnalysis",
			"/monthlyAnalysis",
		},
	})
}

func (h *BatchHandler) Test(c *gin.Context) {
	var body interface{}
	// The echo endpoint accepts any JSON, including none at all.
	_ = c.ShouldBindJSON(&body)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Test endpoint working!",
		"data":    body,
	})
}

func (h *BatchHandler) runHandler(analysisType domain.AnalysisType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "invalid request body",
					"error":   err.Error(),
				})
				return
			}
		}

		report, err := h.svc.Run(c.Request.Context(), analysisType, req.UserIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": string(analysisType) + " analysis failed",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": string(analysisType) + " analysis completed successfully",
			"report":  report,
		})
	}
}
