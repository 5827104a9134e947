package insights

import (
	"context"
	"time"
)

// Rule thresholds.
const (
	lowVegetationIndex = 0.5
	highAirQuality     = 50
	highTemperature    = 30
)

// RuleBased is the deterministic insight source. It never fails.
type RuleBased struct {
	now func() time.Time
}

// NewRuleBased creates a RuleBased source. A nil clock means time.Now.
func NewRuleBased(now func() time.Time) *RuleBased {
	if now == nil {
		now = time.Now
	}
	return &RuleBased{now: now}
}

func (r *RuleBased) Name() string { return "rules" }

// Generate applies the threshold rules to req.Metrics in a fixed order.
func (r *RuleBased) Generate(ctx context.Context, req Request) ([]Insight, error) {
	return r.Insights(req), nil
}

// Insights is Generate without the error.
func (r *RuleBased) Insights(req Request) []Insight {
	if req.Metrics == nil {
		return []Insight{r.steadyState()}
	}
	m := *req.Metrics
	now := r.now()

	var out []Insight
	add := func(title, description string, severity Severity, recommendation string) {
		out = append(out, Insight{
			ID:             insightID(now, len(out)),
			Title:          title,
			Description:    description,
			Severity:       severity,
			Recommendation: recommendation,
		})
	}

	if m.VegetationIndex < lowVegetationIndex {
		add("Increase Green Cover in Urban Areas",
			"Low vegetation index detected. Urban areas would benefit from increased tree coverage.",
			SeverityHigh,
			"Plant 200+ trees and create 3 new parks. Estimated cost: $500K. Expected NDVI improvement: 0.15 over 2 years.")
	}
	if m.AirQuality > highAirQuality {
		add("Improve Air Quality Monitoring",
			"Air quality levels are moderate. Enhanced monitoring and interventions recommended.",
			SeverityMedium,
			"Install 5 additional air quality sensors. Promote public transit usage. Cost: $50K.")
	}
	if m.Temperature > highTemperature {
		add("Urban Heat Island Mitigation",
			"High temperatures detected. Urban heat island effect may be significant.",
			SeverityHigh,
			"Increase tree canopy coverage by 20%. Install cool roofs. Create water features. Cost: $800K.")
	}

	if len(out) == 0 {
		return []Insight{r.steadyState()}
	}
	return out
}

func (r *RuleBased) steadyState() Insight {
	return Insight{
		ID:             insightID(r.now(), 0),
		Title:          "Maintain Current Environmental Standards",
		Description:    "Environmental metrics are within acceptable ranges.",
		Severity:       SeverityLow,
		Recommendation: "Continue monitoring and maintain current sustainable practices. Regular assessments recommended.",
	}
}
