package environment

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// SyntheticSource generates plausible metrics from a seeded pseudo-random
// model with latitude and seasonal terms. The same seed and clock always
// produce the same sequence.
type SyntheticSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// SyntheticOption configures a SyntheticSource.
type SyntheticOption func(*SyntheticSource)

// WithSyntheticClock overrides the clock driving the seasonal term.
func WithSyntheticClock(now func() time.Time) SyntheticOption {
	return func(s *SyntheticSource) {
		s.now = now
	}
}

// NewSyntheticSource creates a synthetic source seeded with seed.
func NewSyntheticSource(seed uint64, opts ...SyntheticOption) *SyntheticSource {
	s := &SyntheticSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SyntheticSource) Name() string { return "synthetic" }

func (s *SyntheticSource) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// seasonalFactor is a yearly sine keyed on the zero-based month.
func (s *SyntheticSource) seasonalFactor() float64 {
	month := float64(s.now().Month() - 1)
	return math.Sin(month / 12 * math.Pi * 2)
}

func latitudeFactor(lat float64) float64 {
	return math.Abs(lat) / 90
}

// Metrics returns a synthetic snapshot for loc.
func (s *SyntheticSource) Metrics(ctx context.Context, loc Location) (Snapshot, error) {
	latFactor := latitudeFactor(loc.Lat())
	seasonal := s.seasonalFactor()

	return Snapshot{
		AirQuality:      math.Round(s.airQualityBase() + latFactor*10 + seasonal*5),
		VegetationIndex: roundTo(s.vegetationBase()+seasonal*0.1, 2),
		Temperature:     roundTo(s.temperatureBase()+latFactor*5+seasonal*8, 1),
		WaterQuality:    roundTo(s.waterBase()+seasonal*0.2, 1),
	}, nil
}

func (s *SyntheticSource) airQualityBase() float64  { return 35 + s.float()*30 }
func (s *SyntheticSource) vegetationBase() float64  { return 0.55 + s.float()*0.25 }
func (s *SyntheticSource) temperatureBase() float64 { return 20 + s.float()*15 }
func (s *SyntheticSource) waterBase() float64       { return 6.8 + s.float()*0.8 }

// Historical returns one value per month ending with the current month.
func (s *SyntheticSource) Historical(ctx context.Context, location string, metric Metric, months int) ([]HistoricalPoint, error) {
	base := historicalBase(metric)
	variance := base * 0.2
	trendStep := base * 0.01
	currentMonth := int(s.now().Month()) - 1

	points := make([]HistoricalPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthIndex := ((currentMonth-i)%12 + 12) % 12
		trend := float64(months-i) * trendStep
		value := base + (s.float()-0.5)*variance + trend

		points = append(points, HistoricalPoint{
			Date:  monthLabels[monthIndex],
			Value: roundTo(clampMetric(metric, value), 2),
		})
	}
	return points, nil
}

func historicalBase(metric Metric) float64 {
	switch metric {
	case MetricAQI:
		return 45
	case MetricNDVI:
		return 0.6
	case MetricTemperature:
		return 25
	default:
		return 7.0
	}
}

func clampMetric(metric Metric, v float64) float64 {
	switch metric {
	case MetricAQI:
		return clamp(v, 0, maxAQI)
	case MetricNDVI:
		return clamp(v, 0, 1)
	case MetricWaterPH:
		return clamp(v, 0, 14)
	default:
		return v
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
