package environment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

// MetricsQuery selects the location of a snapshot.
type MetricsQuery struct {
	Location string
	Lat      *float64
	Lon      *float64
}

// HistoricalQuery selects a metric series.
type HistoricalQuery struct {
	Location string
	Metric   string
	Months   int // 0 means DefaultMonths
}

// Service answers metrics queries from a primary source and falls back to a
// synthetic one. It only returns validation errors.
type Service struct {
	primary  Source
	fallback Source
	cache    *SnapshotCache
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService creates a Service. primary and cache may be nil; fallback is
// required.
func NewService(primary, fallback Source, cache *SnapshotCache, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    cache,
		timeout:  timeout,
		logger:   logger,
	}
}

// GetMetrics returns the current snapshot for the queried location.
func (s *Service) GetMetrics(ctx context.Context, q MetricsQuery) (Snapshot, error) {
	loc, err := NewLocation(q.Location, q.Lat, q.Lon)
	if err != nil {
		return Snapshot{}, err
	}

	key := CacheKey(loc)
	if s.cache != nil {
		if snapshot, ok := s.cache.Get(key); ok {
			return snapshot, nil
		}
	}

	var snapshot Snapshot
	if s.primary == nil {
		snapshot, err = s.fallback.Metrics(ctx, loc)
		if err != nil {
			return Snapshot{}, err
		}
	} else if snapshot, err = s.fromPrimary(ctx, loc); err != nil {
		s.logger.Warn("Metrics source failed, using fallback",
			zap.String("location", loc.Name),
			zap.Error(err),
		)
		telemetry.FallbackTotal.WithLabelValues("metrics").Inc()

		snapshot, err = s.fallback.Metrics(ctx, loc)
		if err != nil {
			// The synthetic source does not fail; treat it as a bug if it does.
			return Snapshot{}, err
		}
	}

	snapshot = snapshot.Clamp()
	if s.cache != nil {
		s.cache.Set(key, snapshot)
	}
	return snapshot, nil
}

func (s *Service) fromPrimary(ctx context.Context, loc Location) (Snapshot, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	snapshot, err := s.primary.Metrics(callCtx, loc)
	if err != nil {
		return Snapshot{}, err
	}
	if callCtx.Err() != nil {
		return Snapshot{}, apperrors.Upstream(s.primary.Name(), callCtx.Err())
	}
	return snapshot, nil
}

// GetHistorical returns a monthly series for the queried metric.
func (s *Service) GetHistorical(ctx context.Context, q HistoricalQuery) ([]HistoricalPoint, error) {
	metric, err := ParseMetric(q.Metric)
	if err != nil {
		return nil, err
	}
	months := q.Months
	if months == 0 {
		months = DefaultMonths
	}
	if months < 1 || months > MaxMonths {
		return nil, apperrors.Validation("months must be between 1 and %d", MaxMonths)
	}
	location := q.Location
	if location == "" {
		location = DefaultLocationName
	}

	if s.primary != nil {
		callCtx, cancel := s.withTimeout(ctx)
		points, err := s.primary.Historical(callCtx, location, metric, months)
		cancel()
		if err == nil && len(points) == months {
			return points, nil
		}
		if err != nil && !errors.Is(err, ErrUnsupported) {
			s.logger.Warn("Historical source failed, using fallback",
				zap.String("metric", string(metric)),
				zap.Error(err),
			)
			telemetry.FallbackTotal.WithLabelValues("historical").Inc()
		}
	}

	return s.fallback.Historical(ctx, location, metric, months)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
