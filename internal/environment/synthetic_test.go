package environment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newYork(t *testing.T) Location {
	loc, err := NewLocation("", nil, nil)
	require.NoError(t, err)
	return loc
}

func TestSyntheticSource_Deterministic(t *testing.T) {
	clock := fixedClock(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))
	a := NewSyntheticSource(42, WithSyntheticClock(clock))
	b := NewSyntheticSource(42, WithSyntheticClock(clock))

	for i := 0; i < 5; i++ {
		sa, err := a.Metrics(context.Background(), newYork(t))
		require.NoError(t, err)
		sb, err := b.Metrics(context.Background(), newYork(t))
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	}
}

func TestSyntheticSource_MetricsInRange(t *testing.T) {
	src := NewSyntheticSource(7)

	for _, lat := range []float64{-90, -33.9, 0, 40.7128, 90} {
		lon := 10.0
		loc, err := NewLocation("x", &lat, &lon)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			s, err := src.Metrics(context.Background(), loc)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, s.AirQuality, 0.0)
			assert.Equal(t, s.AirQuality, float64(int(s.AirQuality)), "AQI is an integer")
			assert.GreaterOrEqual(t, s.VegetationIndex, 0.0)
			assert.LessOrEqual(t, s.VegetationIndex, 1.0)
			assert.GreaterOrEqual(t, s.WaterQuality, 0.0)
			assert.LessOrEqual(t, s.WaterQuality, 14.0)
		}
	}
}

func TestSyntheticSource_HistoricalLabels(t *testing.T) {
	src := NewSyntheticSource(1, WithSyntheticClock(fixedClock(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))))

	points, err := src.Historical(context.Background(), "Paris", MetricAQI, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "Jan", points[0].Date)
	assert.Equal(t, "Feb", points[1].Date)
	assert.Equal(t, "Mar", points[2].Date)
}

func TestSyntheticSource_HistoricalWrapsYear(t *testing.T) {
	src := NewSyntheticSource(1, WithSyntheticClock(fixedClock(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))))

	points, err := src.Historical(context.Background(), "Paris", MetricNDVI, 14)
	require.NoError(t, err)
	require.Len(t, points, 14)
	assert.Equal(t, "Jan", points[0].Date)
	assert.Equal(t, "Dec", points[11].Date)
	assert.Equal(t, "Feb", points[13].Date)

	for _, p := range points {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 1.0)
	}
}

func TestNewLocation(t *testing.T) {
	lat, lon := 51.5, -0.12
	badLat := 91.0

	loc, err := NewLocation("  ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLocationName, loc.Name)
	assert.Equal(t, DefaultLatitude, loc.Lat())
	assert.Equal(t, DefaultLongitude, loc.Lon())

	loc, err = NewLocation("London", &lat, &lon)
	require.NoError(t, err)
	assert.Equal(t, 51.5, loc.Lat())
	assert.Equal(t, -0.12, loc.Lon())

	_, err = NewLocation("London", &lat, nil)
	assert.Error(t, err)

	_, err = NewLocation("Nowhere", &badLat, &lon)
	assert.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricAQI, m)

	m, err = ParseMetric("NDVI")
	require.NoError(t, err)
	assert.Equal(t, MetricNDVI, m)

	_, err = ParseMetric("humidity")
	assert.Error(t, err)
}

func TestSnapshotClamp(t *testing.T) {
	s := Snapshot{AirQuality: -3, VegetationIndex: 1.4, Temperature: -12, WaterQuality: 15}.Clamp()
	assert.Equal(t, Snapshot{AirQuality: 0, VegetationIndex: 1, Temperature: -12, WaterQuality: 14}, s)
}
