package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates the Prometheus registry and the
// collectors the API reports on.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	quotaRejections prometheus.Counter
	remindersSent   prometheus.Counter
	remindersFailed prometheus.Counter
}

// NewMetricsService registers the collectors on a fresh registry.
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	quotaRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_quota_rejections_total",
		Help: "Assignment creations rejected by the weekly quota",
	})

	remindersSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "WhatsApp reminders accepted by the provider",
	})

	remindersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_failed_total",
		Help: "WhatsApp reminders that failed to dispatch",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		quotaRejections, remindersSent, remindersFailed, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		quotaRejections: quotaRejections,
		remindersSent:   remindersSent,
		remindersFailed: remindersFailed,
	}
}

// Handler exposes the registry over HTTP.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one finished HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	s.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCacheHit increments the cache hit counter.
func (s *MetricsService) RecordCacheHit() { s.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func (s *MetricsService) RecordCacheMiss() { s.cacheMisses.Inc() }

// RecordQuotaRejection counts an assignment rejected by the quota.
func (s *MetricsService) RecordQuotaRejection() { s.quotaRejections.Inc() }

// RecordReminder counts one reminder dispatch outcome.
func (s *MetricsService) RecordReminder(success bool) {
	if success {
		s.remindersSent.Inc()
	} else {
		s.remindersFailed.Inc()
	}
}
