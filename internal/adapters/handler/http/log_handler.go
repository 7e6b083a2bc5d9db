package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innerflow/flow-engine/internal/adapters/handler/http/middleware"
	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/innerflow/flow-engine/internal/core/services"
)

type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler {
	return &LogHandler{
		svc: svc,
	}
}

type saveLogRequest struct {
	Date string `json:"date" binding:"required"`

	Mood          string `json:"mood"`
	MorningMood   int    `json:"morning_mood"`
	GeneralMood   int    `json:"general_mood"`
	MorningEnergy int    `json:"morning_energy"`
	GeneralEnergy int    `json:"general_energy"`
	StressLevel   int    `json:"stress_level"`
	DigestiveFlow int    `json:"digestive_flow"`
	PainLevel     int    `json:"pain_level"`

	TimeToBed  time.Time `json:"time_to_bed"`
	TimeWokeUp time.Time `json:"time_woke_up"`

	Activities []string `json:"activities"`

	FoodBreakfast  string `json:"food_breakfast"`
	FoodSnack1     string `json:"food_snack1"`
	FoodLunch      string `json:"food_lunch"`
	FoodSnack2     string `json:"food_snack2"`
	FoodDinner     string `json:"food_dinner"`
	FoodDrinks     string `json:"food_drinks"`
	Medicines      string `json:"medicines"`
	DigestiveNotes string `json:"digestive_notes"`
	PainNotes      string `json:"pain_notes"`
	Notes          string `json:"notes"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/logs")
	{
		logs.POST("", h.Save)
		logs.GET("", h.ListRecent)
		logs.GET("/:date", h.GetByDate)
		logs.DELETE("/:date", h.Delete)
	}
}

func (h *LogHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	input := services.SaveLogInput{
		UserID: userID,
		Date:   date,
		Mood:   req.Mood,
		Ratings: domain.LogRatings{
			MorningMood:   req.MorningMood,
			GeneralMood:   req.GeneralMood,
			MorningEnergy: req.MorningEnergy,
			GeneralEnergy: req.GeneralEnergy,
			StressLevel:   req.StressLevel,
			DigestiveFlow: req.DigestiveFlow,
			PainLevel:     req.PainLevel,
		},
		TimeToBed:      req.TimeToBed,
		TimeWokeUp:     req.TimeWokeUp,
		Activities:     req.Activities,
		FoodBreakfast:  req.FoodBreakfast,
		FoodSnack1:     req.FoodSnack1,
		FoodLunch:      req.FoodLunch,
		FoodSnack2:     req.FoodSnack2,
		FoodDinner:     req.FoodDinner,
		FoodDrinks:     req.FoodDrinks,
		Medicines:      req.Medicines,
		DigestiveNotes: req.DigestiveNotes,
		PainNotes:      req.PainNotes,
		Notes:          req.Notes,
	}

	saved, err := h.svc.Save(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *LogHandler) ListRecent(c *gin.Context) {
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

	logs, err := h.svc.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *LogHandler) GetByDate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entry, err := h.svc.GetByDate(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("date")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrLogNotFound) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrAnalysisNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrLogInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})

	case errors.Is(err, domain.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "analysis type must be weekly or monthly"})

	case errors.Is(err, domain.ErrNameEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
