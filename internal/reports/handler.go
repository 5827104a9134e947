package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
)

// Handler handles HTTP requests for reports and exports
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers report routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.POST("/generate", h.generateReport)
		reports.GET("/export/:dataset", h.exportDataset)
	}
}

// generateReport handles POST /api/v1/reports/generate
func (h *Handler) generateReport(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := h.service.GeneratePDF(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to generate report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	sendFile(c, file)
}

// exportDataset handles GET /api/v1/reports/export/:dataset
func (h *Handler) exportDataset(c *gin.Context) {
	dataset, err := ParseDataset(c.Param("dataset"))
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to export dataset", err)
		return
	}
	format, err := ParseFormat(c.Query("format"))
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to export dataset", err)
		return
	}

	file, err := h.service.Export(c.Request.Context(), dataset, format)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to export dataset", err)
		return
	}

	sendFile(c, file)
}

func sendFile(c *gin.Context, file *File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
