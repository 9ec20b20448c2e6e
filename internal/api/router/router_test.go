package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/config"
	"github.com/tomwright01/dashboard/internal/api/handler"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/metrics"
)

func newTestEngine(t *testing.T, cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	t.Helper()
	health := handler.NewHealthHandler(func(context.Context) error { return nil }, "memory")
	h := handler.NewHandler(&service.Service{}, health)
	return Setup(cfg, h, m, nil, zap.NewNop())
}

func TestSetup_Routes(t *testing.T) {
	engine := newTestEngine(t, &config.Config{}, nil)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /api/v1/search",
		"GET /api/v1/metrics/values",
		"POST /api/v1/metrics/values",
		"POST /api/v1/metrics/values/export",
		"GET /api/v1/qc/scans",
		"GET /api/v1/qc/scans/export",
		"GET /api/v1/qc/outstanding",
		"GET /api/v1/studies/:code/timepoints",
		"POST /api/v1/studies",
		"GET /api/v1/sessions/:name/:num",
		"GET /api/v1/users/:id/sites",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.False(t, registered["GET /metrics"], "metrics route registered while disabled")
}

func TestSetup_Health(t *testing.T) {
	engine := newTestEngine(t, &config.Config{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestSetup_MetricsEndpoint(t *testing.T) {
	cfg := &config.Config{Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"}}
	engine := newTestEngine(t, cfg, metrics.New())

	// 先产生一次请求，确保直方图有样本
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/health")
}

func TestSetup_UnknownRoute(t *testing.T) {
	engine := newTestEngine(t, &config.Config{}, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
