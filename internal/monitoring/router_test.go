package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.IncSearch("fallback")

	rec := httptest.NewRecorder()
	NewRouter(reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `jobsearch_searches_total{outcome="fallback"} 1`)
}

func TestRouter_Healthz(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		code   int
		body   string
	}{
		{
			name:   "healthy",
			checks: map[string]HealthCheck{"redis": func(context.Context) error { return nil }},
			code:   http.StatusOK,
			body:   `{"redis":"ok"}`,
		},
		{
			name: "redis down",
			checks: map[string]HealthCheck{
				"redis":    func(context.Context) error { return errors.New("connection refused") },
				"postgres": func(context.Context) error { return nil },
			},
			code: http.StatusServiceUnavailable,
			body: `{"redis":"connection refused","postgres":"ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewRouter(prometheus.NewRegistry(), tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
