package simulations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/environment"
)

// Handler handles HTTP requests for simulation runs
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new simulations handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	registerBindingValidators()
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers simulation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	sims := router.Group("/simulations")
	{
		sims.GET("", h.listSimulations)
		sims.POST("", h.createSimulation)
		sims.GET("/:id", h.getSimulation)
	}

	router.POST("/ai/simulate", h.projectImpact)
}

// createSimulation handles POST /api/v1/simulations
func (h *Handler) createSimulation(c *gin.Context) {
	var req CreateSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sim, err := h.service.CreateSimulation(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to create simulation", err)
		return
	}

	c.JSON(http.StatusCreated, sim)
}

// listSimulations handles GET /api/v1/simulations
func (h *Handler) listSimulations(c *gin.Context) {
	sims, err := h.service.ListSimulations(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to list simulations", err)
		return
	}

	c.JSON(http.StatusOK, sims)
}

// getSimulation handles GET /api/v1/simulations/:id
func (h *Handler) getSimulation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid simulation ID"})
		return
	}

	sim, err := h.service.GetSimulation(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to get simulation", err)
		return
	}

	c.JSON(http.StatusOK, sim)
}

type projectRequest struct {
	Location      string               `json:"location"`
	CurrentData   environment.Snapshot `json:"currentData"`
	Interventions Interventions        `json:"interventions" binding:"required,interventions"`
}

// projectImpact handles POST /api/v1/ai/simulate
func (h *Handler) projectImpact(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projections, err := h.service.ProjectImpact(c.Request.Context(), req.CurrentData, req.Interventions)
	if err != nil {
		apperrors.Respond(c, h.logger, "Failed to project impact", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": projections})
}
