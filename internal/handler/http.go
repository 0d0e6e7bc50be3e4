package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/middleware"
	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/service"
)

// APIError is the error body of every failed request.
type APIError struct {
	Message string `json:"message"`
}

// InvestHandler serves the invest game API and the emotion log API.
type InvestHandler struct {
	invest   service.InvestService
	emotions service.EmotionLogService
	location *time.Location
	logger   *zap.Logger
}

// NewInvestHandler creates an InvestHandler. Zone-less request date-times are read in location.
func NewInvestHandler(invest service.InvestService, emotions service.EmotionLogService, location *time.Location, logger *zap.Logger) *InvestHandler {
	if location == nil {
		location = time.UTC
	}
	return &InvestHandler{
		invest:   invest,
		emotions: emotions,
		location: location,
		logger:   logger.Named("InvestHandler"),
	}
}

// RegisterRoutes mounts the API under basePath. childIdentity resolves the caller for every API route.
// When metrics is set its middleware and /metrics route are installed first, gin fixes each route's
// handler chain at registration.
func (h *InvestHandler) RegisterRoutes(router *gin.Engine, basePath string, childIdentity gin.HandlerFunc, metrics *ginprometheus.Prometheus) {
	if metrics != nil {
		metrics.Use(router)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group(strings.TrimRight(basePath, "/"), childIdentity)

	invest := api.Group("/invest")
	{
		invest.GET("/chapter", h.getChapter)
		invest.POST("/chapter", h.recordTurn)
		invest.POST("/clear/chapter", h.clearChapter)
		invest.POST("/scenario", h.createScenario)
		invest.PUT("/scenario/update", h.updateScenario)
		invest.GET("/history", h.listHistory)
	}

	emotion := api.Group("/log/emotion")
	{
		emotion.POST("", h.publishEmotionLog)
		emotion.GET("", h.searchEmotionLogs)
	}
}

// NewRequestMetrics creates the gin request metrics. Requests are labelled by route template so ids
// in paths and query strings do not become label values.
func NewRequestMetrics() *ginprometheus.Prometheus {
	p := ginprometheus.NewPrometheus("gin")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if route := c.FullPath(); route != "" {
			return route
		}
		return "unmatched"
	}
	return p
}

// handleServiceError maps service errors to HTTP responses.
func (h *InvestHandler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrScenarioNotFound),
		errors.Is(err, models.ErrNoScenarioToUpdate),
		errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrSessionChapterMismatch),
		errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrSessionAlreadyClosed):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error: " + err.Error()}
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(statusCode, apiErr)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIError{Message: message})
}

// childID returns the caller resolved by the identity middleware.
func childID(c *gin.Context) uuid.UUID {
	id, ok := middleware.ChildIDFromContext(c)
	if !ok {
		return uuid.Nil
	}
	return id
}

func parseUUIDQuery(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		badRequest(c, "query parameter '"+name+"' is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "query parameter '"+name+"' must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDField(c *gin.Context, name, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		badRequest(c, "field '"+name+"' must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
