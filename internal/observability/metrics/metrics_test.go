package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a1", "a2", "a3"} {
		req := httptest.NewRequest(http.MethodGet, "/appointments/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/appointments/{id}", "200"))
	assert.Equal(t, float64(3), count)
}

func TestMiddlewareCountsConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Post("/appointments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.conflictsTotal))
}

func TestNilMetricsAreSilent(t *testing.T) {
	var m *RequestMetrics
	m.ObserveBooking("success")
	m.ObserveCheckIn("check_in", "success")

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/departments", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestObserveCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	m.ObserveBooking("success")
	m.ObserveBooking("conflict")
	m.ObserveCheckIn("check_in", "success")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.bookingsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.bookingsTotal.WithLabelValues("conflict")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.checkInsTotal.WithLabelValues("check_in", "success")))
}
