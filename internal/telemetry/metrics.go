// Package telemetry holds the Prometheus collectors exported on /metrics.
package telemetry

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FallbackTotal counts answers served by a local fallback, by component.
	FallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_fallback_total",
		Help: "Responses served by a deterministic fallback, by component",
	}, []string{"component"})

	// UpstreamDuration tracks external collaborator latency.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_upstream_duration_seconds",
		Help:    "External collaborator call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
	}, []string{"service", "result"})

	// SimulationsCreated counts stored simulation runs.
	SimulationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_simulations_created_total",
		Help: "Simulation runs created",
	})

	// CommunityEvents counts community board writes by action.
	CommunityEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_community_events_total",
		Help: "Community report writes by action",
	}, []string{"action"})

	// ReportsRendered counts generated documents by format.
	ReportsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_reports_rendered_total",
		Help: "Rendered reports and exports by format",
	}, []string{"format"})
)

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
