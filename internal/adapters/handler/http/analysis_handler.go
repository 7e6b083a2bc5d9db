package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/innerflow/flow-engine/internal/adapters/handler/http/middleware"
	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/innerflow/flow-engine/internal/core/services"
)

// AnalysisHandler exposes read-only analysis views to the client.
// Results are created exclusively by the batch service.
type AnalysisHandler struct {
	svc *services.AnalysisService
}

func NewAnalysisHandler(svc *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup) {
	analyses := router.Group("/analyses")
	{
		analyses.GET("", h.List)
		analyses.GET("/latest", h.Latest)
	}
}

func (h *AnalysisHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	results, err := h.svc.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *AnalysisHandler) Latest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	analysisType := domain.AnalysisType(c.DefaultQuery("type", string(domain.AnalysisWeekly)))

	result, err := h.svc.Latest(c.Request.Context(), userID, analysisType)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
