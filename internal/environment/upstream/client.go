// Package upstream is the single outbound HTTP path for the external data
// APIs. Every call is made once, bounded by the caller's context, and guarded
// by a circuit breaker so a failing provider is skipped quickly.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/telemetry"
)

const maxBodyBytes = 4 << 20

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// BreakerSettings tunes the circuit breaker of a Client.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive failures and probes again
// after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// Client wraps an *http.Client and a circuit breaker.
type Client struct {
	name      string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	userAgent string
}

// NewClient creates a Client for the named upstream.
func NewClient(httpClient *http.Client, name, userAgent string, settings BreakerSettings) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// 4xx is a caller problem, not an unhealthy upstream.
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
	})

	return &Client{
		name:      name,
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
	}
}

// Name returns the upstream name used for metrics and errors.
func (c *Client) Name() string { return c.name }

// State reports the breaker state.
func (c *Client) State() gobreaker.State { return c.breaker.State() }

// GetJSON issues a GET to endpoint with query and decodes the JSON body into
// out. All failures are wrapped as apperrors.ErrUpstreamUnavailable.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, header http.Header, out interface{}) error {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, endpoint, query, header)
	})

	result := "ok"
	if err != nil {
		result = "error"
	}
	telemetry.UpstreamDuration.WithLabelValues(c.name, result).Observe(time.Since(start).Seconds())

	if err != nil {
		return apperrors.Upstream(c.name, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Upstream(c.name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, header http.Header) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
