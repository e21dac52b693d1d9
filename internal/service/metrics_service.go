package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the booking engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	suggestionTotal *prometheus.CounterVec
	commitTotal     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	suggestionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_suggestions_total",
		Help: "Auto-scheduler placement outcomes",
	}, []string{"outcome"})

	commitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_commits_total",
		Help: "Booking commit outcomes",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, suggestionTotal, commitTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		suggestionTotal: suggestionTotal,
		commitTotal:     commitTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-request latency and volume.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// CountSuggestion records an auto-scheduler placement outcome.
func (m *MetricsService) CountSuggestion(placed bool) {
	if m == nil {
		return
	}
	outcome := "placed"
	if !placed {
		outcome = "unplaced"
	}
	m.suggestionTotal.WithLabelValues(outcome).Inc()
}

// CountCommit records a booking write outcome.
func (m *MetricsService) CountCommit(ok bool) {
	if m == nil {
		return
	}
	outcome := "committed"
	if !ok {
		outcome = "conflict"
	}
	m.commitTotal.WithLabelValues(outcome).Inc()
}
