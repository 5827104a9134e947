package environment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
)

// Handler handles HTTP requests for environmental metrics
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new environment handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers metrics routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/metrics", h.getMetrics)
	router.GET("/historical", h.getHistorical)
}

// getMetrics handles GET /api/v1/metrics
func (h *Handler) getMetrics(c *gin.Context) {
	lat, err := optionalFloat(c, "lat")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := optionalFloat(c, "lon")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}

	snapshot, err := h.service.GetMetrics(c.Request.Context(), MetricsQuery{
		Location: c.Query("location"),
		Lat:      lat,
		Lon:      lon,
	})
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to get metrics", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// getHistorical handles GET /api/v1/historical
func (h *Handler) getHistorical(c *gin.Context) {
	months := DefaultMonths
	if raw, ok := c.GetQuery("months"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxMonths {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be an integer between 1 and 24"})
			return
		}
		months = n
	}

	points, err := h.service.GetHistorical(c.Request.Context(), HistoricalQuery{
		Location: c.Query("location"),
		Metric:   c.Query("metric"),
		Months:   months,
	})
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to get historical data", err)
		return
	}

	c.JSON(http.StatusOK, points)
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
