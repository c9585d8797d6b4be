package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	consoleInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_http_in_flight_requests",
		Help: "In-flight console HTTP requests.",
	})

	consoleRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of console HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	consoleRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Console HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Requests sent to the incubation backend by UI module, action and outcome.",
		},
		[]string{"module", "action", "outcome"},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_backend_request_duration_seconds",
			Help:    "Backend request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"module", "action"},
	)

	autoLogoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_auto_logouts_total",
		Help: "Sessions ended by the inactivity monitor.",
	})

	batchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_batch_outcomes_total",
			Help: "Bulk reconcile outcomes.",
		},
		[]string{"outcome"},
	)

	registerOnce sync.Once
)

// Outcome labels for backend requests.
const (
	OutcomeOK          = "ok"
	OutcomeNetwork     = "network_error"
	OutcomeApplication = "application_error"
)

// Init registers the console collectors in the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			consoleInFlight, consoleRequestsTotal, consoleRequestDuration,
			backendRequestsTotal, backendRequestDuration,
			autoLogoutsTotal, batchOutcomesTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveBackendRequest(module, action, outcome string, took time.Duration) {
	backendRequestsTotal.WithLabelValues(module, action, outcome).Inc()
	backendRequestDuration.WithLabelValues(module, action).Observe(took.Seconds())
}

func IncAutoLogout() {
	autoLogoutsTotal.Inc()
}

func IncBatchOutcome(outcome string) {
	batchOutcomesTotal.WithLabelValues(outcome).Inc()
}

// Instrument measures console requests, labelled by the matched chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		consoleInFlight.Inc()
		defer consoleInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := strconv.Itoa(sw.code)

		consoleRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		consoleRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
