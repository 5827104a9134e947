package environment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/environment/upstream"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

// ExternalConfig holds the endpoints of the public data APIs.
type ExternalConfig struct {
	OpenAQURL    string
	OpenAQAPIKey string
	PowerURL     string
	SearchRadius int // metres
}

// DefaultExternalConfig returns the public endpoints.
func DefaultExternalConfig() ExternalConfig {
	return ExternalConfig{
		OpenAQURL:    "https://api.openaq.org/v2/latest",
		PowerURL:     "https://power.larc.nasa.gov/api/temporal/daily/point",
		SearchRadius: 25000,
	}
}

// powerFillValue marks missing data in NASA POWER responses.
const powerFillValue = -999

var errNoData = errors.New("no data returned")

// ExternalSource reads air quality from OpenAQ and temperature from NASA
// POWER. Vegetation and water pH have no free real-time API and come from the
// synthetic model, as does any single reading that cannot be fetched. The
// call fails only when both upstreams fail.
type ExternalSource struct {
	cfg       ExternalConfig
	openaq    *upstream.Client
	power     *upstream.Client
	synthetic *SyntheticSource
	logger    *zap.Logger
	now       func() time.Time
}

// NewExternalSource creates an ExternalSource.
func NewExternalSource(cfg ExternalConfig, openaq, power *upstream.Client, synthetic *SyntheticSource, logger *zap.Logger) *ExternalSource {
	return &ExternalSource{
		cfg:       cfg,
		openaq:    openaq,
		power:     power,
		synthetic: synthetic,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ExternalSource) Name() string { return "external" }

// Metrics fetches both readings concurrently.
func (s *ExternalSource) Metrics(ctx context.Context, loc Location) (Snapshot, error) {
	var (
		wg             sync.WaitGroup
		aqi, temp      float64
		aqiErr, tmpErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		aqi, aqiErr = s.fetchAirQuality(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		temp, tmpErr = s.fetchTemperature(ctx, loc)
	}()
	wg.Wait()

	if aqiErr != nil && tmpErr != nil {
		return Snapshot{}, errors.Join(aqiErr, tmpErr)
	}

	snapshot, _ := s.synthetic.Metrics(ctx, loc)
	if aqiErr == nil {
		snapshot.AirQuality = aqi
	} else {
		s.logger.Warn("Air quality unavailable, using synthetic value",
			zap.String("location", loc.Name), zap.Error(aqiErr))
		telemetry.FallbackTotal.WithLabelValues("openaq").Inc()
	}
	if tmpErr == nil {
		snapshot.Temperature = temp
	} else {
		s.logger.Warn("Temperature unavailable, using synthetic value",
			zap.String("location", loc.Name), zap.Error(tmpErr))
		telemetry.FallbackTotal.WithLabelValues("nasa-power").Inc()
	}
	return snapshot, nil
}

// Historical is not offered by the real-time APIs.
func (s *ExternalSource) Historical(ctx context.Context, location string, metric Metric, months int) ([]HistoricalPoint, error) {
	return nil, ErrUnsupported
}

type openAQResponse struct {
	Results []struct {
		Measurements []struct {
			Parameter string  `json:"parameter"`
			Value     float64 `json:"value"`
		} `json:"measurements"`
	} `json:"results"`
}

func (s *ExternalSource) fetchAirQuality(ctx context.Context, loc Location) (float64, error) {
	query := url.Values{}
	query.Set("coordinates", fmt.Sprintf("%s,%s", formatCoord(loc.Lat()), formatCoord(loc.Lon())))
	query.Set("radius", strconv.Itoa(s.cfg.SearchRadius))
	query.Set("limit", "1")

	header := http.Header{}
	if s.cfg.OpenAQAPIKey != "" {
		header.Set("X-API-Key", s.cfg.OpenAQAPIKey)
	}

	var resp openAQResponse
	if err := s.openaq.GetJSON(ctx, s.cfg.OpenAQURL, query, header, &resp); err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, errNoData
	}
	for _, m := range resp.Results[0].Measurements {
		if m.Parameter == "pm25" {
			return AQIFromPM25(m.Value), nil
		}
	}
	return 0, errNoData
}

type powerResponse struct {
	Properties struct {
		Parameter struct {
			T2M map[string]float64 `json:"T2M"`
		} `json:"parameter"`
	} `json:"properties"`
}

func (s *ExternalSource) fetchTemperature(ctx context.Context, loc Location) (float64, error) {
	day := s.now().AddDate(0, 0, -1).Format("20060102")

	query := url.Values{}
	query.Set("parameters", "T2M")
	query.Set("community", "RE")
	query.Set("longitude", formatCoord(loc.Lon()))
	query.Set("latitude", formatCoord(loc.Lat()))
	query.Set("start", day)
	query.Set("end", day)
	query.Set("format", "JSON")

	var resp powerResponse
	if err := s.power.GetJSON(ctx, s.cfg.PowerURL, query, nil, &resp); err != nil {
		return 0, err
	}

	days := make([]string, 0, len(resp.Properties.Parameter.T2M))
	for d := range resp.Properties.Parameter.T2M {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		if v := resp.Properties.Parameter.T2M[d]; v > powerFillValue {
			return roundTo(v, 1), nil
		}
	}
	return 0, errNoData
}

// AQIFromPM25 converts a PM2.5 concentration (µg/m³) to a simplified US EPA
// AQI, rounded to an integer and capped at 200.
func AQIFromPM25(pm25 float64) float64 {
	var aqi float64
	switch {
	case pm25 <= 12:
		aqi = 50.0 / 12.0 * pm25
	case pm25 <= 35.4:
		aqi = 49.0/23.3*(pm25-12.1) + 51
	case pm25 <= 55.4:
		aqi = 49.0/19.9*(pm25-35.5) + 101
	case pm25 <= 150.4:
		aqi = 49.0/94.9*(pm25-55.5) + 151
	default:
		aqi = 200
	}
	return math.Max(0, math.Round(aqi))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
