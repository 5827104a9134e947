package community

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

const maxDescriptionLength = 2000

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Service provides the community board operations.
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

// NewService creates a new community service
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

// CreateReport validates and stores a new report.
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest) (*Report, error) {
	category := Category(strings.ToLower(strings.TrimSpace(string(req.Category))))
	location := strings.TrimSpace(req.Location)
	description := strings.TrimSpace(req.Description)

	if !category.IsValid() {
		return nil, apperrors.Validation("unknown category %q", req.Category)
	}
	if location == "" {
		return nil, apperrors.Validation("location is required")
	}
	if description == "" {
		return nil, apperrors.Validation("description is required")
	}
	if len(description) > maxDescriptionLength {
		return nil, apperrors.Validation("description must be at most %d characters", maxDescriptionLength)
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	report := Report{
		ID:          uuid.New(),
		Category:    category,
		Location:    location,
		Description: description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      StatusUnderReview,
		Upvotes:     0,
		CreatedAt:   s.now(),
	}.Clone()

	if err := s.repo.Create(ctx, &report); err != nil {
		return nil, err
	}
	telemetry.CommunityEvents.WithLabelValues("create").Inc()

	s.logger.Info("Community report created",
		zap.String("report_id", report.ID.String()),
		zap.String("category", string(category)),
	)

	return &report, nil
}

func validateCoordinates(lat, lon *float64) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return apperrors.Validation("latitude and longitude must be supplied together")
	}
	if math.IsNaN(*lat) || math.IsNaN(*lon) || !worldBound.Contains(orb.Point{*lon, *lat}) {
		return apperrors.Validation("latitude must be within [-90, 90] and longitude within [-180, 180]")
	}
	return nil
}

// ListReports returns every report newest first.
func (s *Service) ListReports(ctx context.Context) ([]Report, error) {
	return s.repo.List(ctx)
}

// GetReport returns a single report.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// Upvote adds one vote to the report.
func (s *Service) Upvote(ctx context.Context, id uuid.UUID) (*Report, error) {
	report, err := s.repo.Upvote(ctx, id)
	if err != nil {
		return nil, err
	}
	telemetry.CommunityEvents.WithLabelValues("upvote").Inc()

	s.logger.Debug("Community report upvoted",
		zap.String("report_id", id.String()),
		zap.Int("upvotes", report.Upvotes),
	)
	return report, nil
}

// MapLayer returns the reports that carry coordinates as a GeoJSON feature
// collection, newest first.
func (s *Service) MapLayer(ctx context.Context) (*geojson.FeatureCollection, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		if !r.HasCoordinates() {
			continue
		}
		f := geojson.NewFeature(orb.Point{*r.Longitude, *r.Latitude})
		f.ID = r.ID.String()
		f.Properties["category"] = string(r.Category)
		f.Properties["location"] = r.Location
		f.Properties["description"] = r.Description
		f.Properties["status"] = string(r.Status)
		f.Properties["upvotes"] = r.Upvotes
		f.Properties["createdAt"] = r.CreatedAt
		fc.Append(f)
	}
	return fc, nil
}
