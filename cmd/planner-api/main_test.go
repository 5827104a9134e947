package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/config"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.AppEnv = "test"
	logger := zap.NewNop()

	a := newApp(cfg, logger)
	t.Cleanup(a.close)
	return newRouter(cfg, logger, a)
}

func request(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestServer(t)

	w := request(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = request(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP")
}

func TestRouter_DashboardFlow(t *testing.T) {
	router := newTestServer(t)

	w := request(router, http.MethodGet, "/api/v1/metrics?location=Nairobi&lat=-1.29&lon=36.82", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))

	w = request(router, http.MethodPost, "/api/v1/ai/insights", map[string]interface{}{
		"location": "Nairobi",
		"metrics":  snapshot,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var insightResp struct {
		Insights []map[string]interface{} `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insightResp))
	require.NotEmpty(t, insightResp.Insights)

	w = request(router, http.MethodPost, "/api/v1/reports/generate", map[string]interface{}{
		"data": map[string]interface{}{"metrics": snapshot, "insights": insightResp.Insights},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestRouter_SimulationAndCommunity(t *testing.T) {
	router := newTestServer(t)

	w := request(router, http.MethodPost, "/api/v1/simulations", map[string]interface{}{
		"name":          "Boundary",
		"location":      "Lima",
		"interventions": map[string]float64{"trees": 50},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"-10% improvement"`)

	w = request(router, http.MethodPost, "/api/v1/community/reports", map[string]interface{}{
		"category": "noise", "location": "Plaza", "description": "Late music",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(router, http.MethodGet, "/api/v1/reports/export/community", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Late music")
}

func TestCORS(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulations", nil)
	req.Header.Set("Origin", "https://planner.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware([]string{"https://ok.example"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://ok.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://ok.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
