package simulations

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/environment"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

// Service provides the what-if simulation operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new simulations service
func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSimulation validates the request, computes predictions server-side and
// stores the run.
func (s *Service) CreateSimulation(ctx context.Context, req CreateSimulationRequest) (*Simulation, error) {
	name := strings.TrimSpace(req.Name)
	location := strings.TrimSpace(req.Location)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if location == "" {
		return nil, apperrors.Validation("location is required")
	}
	if req.Interventions == nil {
		return nil, apperrors.Validation("interventions are required")
	}
	if err := ValidateInterventions(req.Interventions); err != nil {
		return nil, err
	}

	predictions := ComputeImpact(req.Interventions)
	sim := &Simulation{
		ID:            uuid.New(),
		Name:          name,
		Location:      location,
		Interventions: req.Interventions.Clone(),
		Predictions:   &predictions,
		CreatedAt:     s.now(),
	}

	if err := s.repo.Create(ctx, sim); err != nil {
		return nil, err
	}
	telemetry.SimulationsCreated.Inc()

	s.logger.Info("Simulation created",
		zap.String("simulation_id", sim.ID.String()),
		zap.String("location", sim.Location),
		zap.String("air_quality", predictions.AirQuality))

	return sim, nil
}

// ListSimulations returns every stored run, newest first.
func (s *Service) ListSimulations(ctx context.Context) ([]Simulation, error) {
	return s.repo.List(ctx)
}

// GetSimulation returns a stored run or an apperrors.ErrNotFound error.
func (s *Service) GetSimulation(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	return s.repo.Get(ctx, id)
}

// ProjectImpact forecasts metric values against a current snapshot without
// storing anything.
func (s *Service) ProjectImpact(ctx context.Context, current environment.Snapshot, in Interventions) ([]Projection, error) {
	if err := ValidateInterventions(in); err != nil {
		return nil, err
	}
	return Project(current, in), nil
}

// ValidateInterventions rejects unknown levers and magnitudes outside 0-100.
func ValidateInterventions(in Interventions) error {
	for key, magnitude := range in {
		if !Intervention(key).IsKnown() {
			return apperrors.Validation("unknown intervention %q", key)
		}
		if math.IsNaN(magnitude) || magnitude < MinMagnitude || magnitude > MaxMagnitude {
			return apperrors.Validation("magnitude for %q must be between %.0f and %.0f", key, MinMagnitude, MaxMagnitude)
		}
	}
	return nil
}
