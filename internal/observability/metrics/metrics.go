package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics exposes counters/histograms for the record service HTTP
// surface.
type RequestMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	conflictsTotal prometheus.Counter
	checkInsTotal  *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
}

func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	m := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "records",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests handled",
		}, []string{"method", "path", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "records",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "records",
			Name:      "slot_conflicts_total",
			Help:      "Bookings and reschedules rejected for double-booking",
		}),
		checkInsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "records",
			Name:      "check_ins_total",
			Help:      "Arrival queue transitions",
		}, []string{"action", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "records",
			Name:      "bookings_total",
			Help:      "Appointment bookings by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.conflictsTotal, m.checkInsTotal, m.bookingsTotal)
	return m
}

// Middleware records count and latency per route. Paths are taken from the
// request pattern, not the raw URL, to keep cardinality bounded.
func (m *RequestMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := routePattern(r)
		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		m.requestLatency.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		if ww.Status() == http.StatusConflict {
			m.conflictsTotal.Inc()
		}
	})
}

func (m *RequestMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *RequestMetrics) ObserveCheckIn(action, status string) {
	if m == nil {
		return
	}
	m.checkInsTotal.WithLabelValues(action, status).Inc()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
