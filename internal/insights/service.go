package insights

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

// Service generates insights from the configured source and falls back to
// the rule set on any failure. It never returns an error.
type Service struct {
	source   Source
	fallback *RuleBased
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService creates a Service. source may be nil, in which case only the
// rules are used.
func NewService(source Source, fallback *RuleBased, timeout time.Duration, logger *zap.Logger) *Service {
	if fallback == nil {
		fallback = NewRuleBased(nil)
	}
	return &Service{
		source:   source,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

type generateResult struct {
	insights []Insight
	err      error
}

// Generate returns at most MaxInsights insights for req.
func (s *Service) Generate(ctx context.Context, req Request) []Insight {
	if s.source == nil || req.Metrics == nil {
		return s.fallback.Insights(req)
	}

	insights, err := s.fromSource(ctx, req)
	if err != nil {
		s.logger.Warn("Insight source failed, using rule-based insights",
			zap.String("source", s.source.Name()),
			zap.String("location", req.Location),
			zap.Error(err),
		)
		telemetry.FallbackTotal.WithLabelValues("insights").Inc()
		return s.fallback.Insights(req)
	}

	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}

// fromSource bounds the call even if the source ignores ctx.
func (s *Service) fromSource(ctx context.Context, req Request) ([]Insight, error) {
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if s.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	done := make(chan generateResult, 1)
	go func() {
		insights, err := s.source.Generate(callCtx, req)
		done <- generateResult{insights: insights, err: err}
	}()

	result := "ok"
	defer func() {
		telemetry.UpstreamDuration.WithLabelValues(s.source.Name(), result).Observe(time.Since(start).Seconds())
	}()

	select {
	case res := <-done:
		if res.err != nil {
			result = "error"
			return nil, apperrors.Upstream(s.source.Name(), res.err)
		}
		if len(res.insights) == 0 {
			result = "empty"
			return nil, apperrors.Upstream(s.source.Name(), nil)
		}
		return res.insights, nil
	case <-callCtx.Done():
		result = "timeout"
		return nil, apperrors.Upstream(s.source.Name(), callCtx.Err())
	}
}
