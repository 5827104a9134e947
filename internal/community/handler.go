package community

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
)

// Handler handles HTTP requests for community reports
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new community handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers community routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/community/reports")
	{
		reports.GET("", h.listReports)
		reports.POST("", h.createReport)
		reports.GET("/map", h.mapLayer)
		reports.GET("/:id", h.getReport)
		reports.POST("/:id/upvote", h.upvote)
	}
}

// createReport handles POST /api/v1/community/reports
func (h *Handler) createReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to create community report", err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// listReports handles GET /api/v1/community/reports
func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to list community reports", err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// getReport handles GET /api/v1/community/reports/:id
func (h *Handler) getReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to get community report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// upvote handles POST /api/v1/community/reports/:id/upvote
func (h *Handler) upvote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Not a report id of ours either way.
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	report, err := h.service.Upvote(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to upvote community report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// mapLayer handles GET /api/v1/community/reports/map
func (h *Handler) mapLayer(c *gin.Context) {
	fc, err := h.service.MapLayer(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to build community map layer", err)
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}
