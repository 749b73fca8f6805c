package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandlerExposesCounters(t *testing.T) {
	m := New()
	m.FlightsSettled.Add(3)
	m.SettlementsSkipped.WithLabelValues("stale").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "airline_flights_settled_total 3"))
	assert.True(t, strings.Contains(body, `airline_settlements_skipped_total{reason="stale"} 1`))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/schedules/{contractID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/schedules/c-1", nil))

	got := testutil.ToFloat64(m.APIRequests.WithLabelValues("/api/schedules/{contractID}", http.MethodGet, "404"))
	assert.Equal(t, float64(1), got)
}
