package environment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/environment/upstream"
)

func newExternal(t *testing.T, openaq, power http.HandlerFunc) *ExternalSource {
	aqSrv := httptest.NewServer(openaq)
	t.Cleanup(aqSrv.Close)
	powerSrv := httptest.NewServer(power)
	t.Cleanup(powerSrv.Close)

	cfg := DefaultExternalConfig()
	cfg.OpenAQURL = aqSrv.URL
	cfg.PowerURL = powerSrv.URL

	src := NewExternalSource(cfg,
		upstream.NewClient(aqSrv.Client(), "openaq", "", upstream.DefaultBreakerSettings()),
		upstream.NewClient(powerSrv.Client(), "nasa-power", "", upstream.DefaultBreakerSettings()),
		NewSyntheticSource(3),
		zap.NewNop(),
	)
	src.now = fixedClock(time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC))
	return src
}

func openAQOK(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(`{"results":[{"measurements":[{"parameter":"pm10","value":40},{"parameter":"pm25","value":12}]}]}`))
}

func powerOK(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(`{"properties":{"parameter":{"T2M":{"20261016":18.37}}}}`))
}

func failing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusServiceUnavailable)
}

func TestExternalSource_Metrics(t *testing.T) {
	var gotQuery, gotPowerQuery map[string]string
	src := newExternal(t,
		func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"coordinates": r.URL.Query().Get("coordinates"),
				"radius":      r.URL.Query().Get("radius"),
				"limit":       r.URL.Query().Get("limit"),
			}
			openAQOK(w, r)
		},
		func(w http.ResponseWriter, r *http.Request) {
			gotPowerQuery = map[string]string{
				"parameters": r.URL.Query().Get("parameters"),
				"start":      r.URL.Query().Get("start"),
				"end":        r.URL.Query().Get("end"),
			}
			powerOK(w, r)
		},
	)

	s, err := src.Metrics(context.Background(), newYork(t))
	require.NoError(t, err)

	assert.Equal(t, 50.0, s.AirQuality)
	assert.Equal(t, 18.4, s.Temperature)
	assert.GreaterOrEqual(t, s.VegetationIndex, 0.0)
	assert.LessOrEqual(t, s.VegetationIndex, 1.0)

	assert.Equal(t, "40.7128,-74.006", gotQuery["coordinates"])
	assert.Equal(t, "25000", gotQuery["radius"])
	assert.Equal(t, "1", gotQuery["limit"])
	assert.Equal(t, "T2M", gotPowerQuery["parameters"])
	assert.Equal(t, "20261016", gotPowerQuery["start"])
	assert.Equal(t, "20261016", gotPowerQuery["end"])
}

func TestExternalSource_PartialFailureUsesSynthetic(t *testing.T) {
	src := newExternal(t, failing, powerOK)

	s, err := src.Metrics(context.Background(), newYork(t))
	require.NoError(t, err)
	assert.Equal(t, 18.4, s.Temperature)
	assert.Greater(t, s.AirQuality, 0.0)
}

func TestExternalSource_MissingValues(t *testing.T) {
	src := newExternal(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"properties":{"parameter":{"T2M":{"20261016":-999}}}}`))
		},
	)

	_, err := src.Metrics(context.Background(), newYork(t))
	assert.Error(t, err)
}

func TestExternalSource_BothFail(t *testing.T) {
	src := newExternal(t, failing, failing)

	_, err := src.Metrics(context.Background(), newYork(t))
	assert.Error(t, err)
}

func TestExternalSource_HistoricalUnsupported(t *testing.T) {
	src := newExternal(t, openAQOK, powerOK)

	_, err := src.Historical(context.Background(), "x", MetricAQI, 6)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestAQIFromPM25(t *testing.T) {
	tests := []struct {
		pm25 float64
		want float64
	}{
		{0, 0},
		{6, 25},
		{12, 50},
		{35.4, 100},
		{55.4, 150},
		{150.4, 200},
		{480, 200},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AQIFromPM25(tt.pm25), "pm25=%v", tt.pm25)
	}
}
