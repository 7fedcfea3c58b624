package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the dashboard.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reportBuilds    *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec
	orphans         *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP and report metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finboard_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_report_builds_total",
		Help: "Report builds by report and outcome.",
	}, []string{"report", "status"})
	buildDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finboard_report_build_duration_seconds",
		Help:    "Report build duration, cache lookups included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	orphans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_report_orphan_references_total",
		Help: "Settled receivables skipped because their client does not exist.",
	}, []string{"report"})
	registry.MustRegister(requests, duration, builds, buildDuration, orphans)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		reportBuilds:    builds,
		reportDuration:  buildDuration,
		orphans:         orphans,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveReportBuild records one report build.
func (m *Metrics) ObserveReportBuild(report string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.reportBuilds.WithLabelValues(report, status).Inc()
	m.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// AddOrphans counts skipped orphan references.
func (m *Metrics) AddOrphans(report string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.orphans.WithLabelValues(report).Add(float64(n))
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
