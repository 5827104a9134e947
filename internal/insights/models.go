// Package insights turns an environmental snapshot into a short list of
// planning recommendations, using a language model when one is configured
// and a fixed rule set otherwise.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-urban-planner/planner-backend/internal/environment"
)

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity normalizes raw, defaulting to medium.
func ParseSeverity(raw string) Severity {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return s
	default:
		return SeverityMedium
	}
}

// Insight is a single recommendation.
type Insight struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation"`
}

// Request is the input of an insight generation.
type Request struct {
	Location string                `json:"location"`
	Metrics  *environment.Snapshot `json:"metrics" binding:"required"`
}

// MaxInsights caps the number of insights returned.
const MaxInsights = 5

// Source produces insights. Errors mean the caller should fall back.
type Source interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]Insight, error)
}

func insightID(at time.Time, index int) string {
	return fmt.Sprintf("insight-%d-%d", at.UnixMilli(), index)
}
