package insights

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for AI insights
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new insights handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers insight routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/ai/insights", h.generateInsights)
}

// generateInsights handles POST /api/v1/ai/insights
func (h *Handler) generateInsights(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	insights := h.service.Generate(c.Request.Context(), req)
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
