// Package environment provides the environmental metrics shown on the
// dashboard: a current snapshot per location and monthly history per metric.
package environment

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/paulmach/orb"

	"smart-urban-planner/planner-backend/internal/apperrors"
)

// Snapshot is a point-in-time set of environmental metrics for a location.
type Snapshot struct {
	AirQuality      float64 `json:"airQuality"`      // AQI, >= 0
	VegetationIndex float64 `json:"vegetationIndex"` // NDVI, 0-1
	Temperature     float64 `json:"temperature"`     // °C
	WaterQuality    float64 `json:"waterQuality"`    // pH, 0-14
}

// Clamp forces every metric into its documented range.
func (s Snapshot) Clamp() Snapshot {
	return Snapshot{
		AirQuality:      clamp(s.AirQuality, 0, maxAQI),
		VegetationIndex: clamp(s.VegetationIndex, 0, 1),
		Temperature:     s.Temperature,
		WaterQuality:    clamp(s.WaterQuality, 0, 14),
	}
}

// Metric names a historical series.
type Metric string

const (
	MetricAQI         Metric = "aqi"
	MetricNDVI        Metric = "ndvi"
	MetricTemperature Metric = "temp"
	MetricWaterPH     Metric = "ph"
)

// ParseMetric resolves a query value to a Metric; empty means AQI.
func ParseMetric(raw string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return MetricAQI, nil
	case MetricAQI, MetricNDVI, MetricTemperature, MetricWaterPH:
		return m, nil
	default:
		return "", apperrors.Validation("unknown metric %q", raw)
	}
}

// HistoricalPoint is one monthly value of a metric series.
type HistoricalPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Defaults used when a query omits them.
const (
	DefaultLocationName = "New York"
	DefaultLatitude     = 40.7128
	DefaultLongitude    = -74.006
	DefaultMonths       = 6
	MaxMonths           = 24

	maxAQI = 500
)

// worldBound is the valid lon/lat range.
var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Location is a named point. Point is lon/lat ordered as in orb.
type Location struct {
	Name  string
	Point orb.Point
}

// Lat returns the latitude.
func (l Location) Lat() float64 { return l.Point.Lat() }

// Lon returns the longitude.
func (l Location) Lon() float64 { return l.Point.Lon() }

// NewLocation builds a Location, applying defaults for a missing name or
// coordinates. Latitude and longitude must be supplied together.
func NewLocation(name string, lat, lon *float64) (Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLocationName
	}
	if (lat == nil) != (lon == nil) {
		return Location{}, apperrors.Validation("lat and lon must be supplied together")
	}

	point := orb.Point{DefaultLongitude, DefaultLatitude}
	if lat != nil {
		if !isFinite(*lat) || !isFinite(*lon) {
			return Location{}, apperrors.Validation("coordinates must be finite numbers")
		}
		point = orb.Point{*lon, *lat}
		if !worldBound.Contains(point) {
			return Location{}, apperrors.Validation("coordinates out of range")
		}
	}
	return Location{Name: name, Point: point}, nil
}

// ErrUnsupported is returned by a Source that cannot serve an operation.
var ErrUnsupported = errors.New("operation not supported by source")

// Source produces environmental metrics. Implementations must honor ctx.
type Source interface {
	Name() string
	Metrics(ctx context.Context, loc Location) (Snapshot, error)
	Historical(ctx context.Context, location string, metric Metric, months int) ([]HistoricalPoint, error)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
