package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/pulse-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	factQuery        *prometheus.HistogramVec
	syncJobs         *prometheus.CounterVec
	syncDuration     prometheus.Observer
	factRowsWritten  prometheus.Counter
	actionsGenerated prometheus.Observer

	requestCount           uint64
	requestDurationTotal   uint64
	factQueryCount         uint64
	factQueryDurationTotal uint64
	syncCompleted          uint64
	syncFailed             uint64
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

	factQuery := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fact_query_duration_seconds",
		Help:    "Duration of fact store reads",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	syncJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_jobs_total",
		Help: "Fact regeneration runs by final status",
	}, []string{"status"})

	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_job_duration_seconds",
		Help:    "Duration of fact regeneration runs",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	factRowsWritten := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fact_rows_written_total",
		Help: "Traffic and revenue fact rows written by syncs",
	})

	actionsGenerated := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "actions_generated",
		Help:    "Number of recommended actions returned per request",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, factQuery, syncJobs, syncDuration, factRowsWritten, actionsGenerated, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		factQuery:        factQuery,
		syncJobs:         syncJobs,
		syncDuration:     syncDuration,
		factRowsWritten:  factRowsWritten,
		actionsGenerated: actionsGenerated,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveFactQuery records fact store read timing.
func (m *MetricsService) ObserveFactQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.factQuery.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.factQueryCount, 1)
	atomic.AddUint64(&m.factQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveSync records the outcome of a fact regeneration run.
func (m *MetricsService) ObserveSync(status models.SyncStatus, rows int, duration time.Duration) {
	if m == nil {
		return
	}
	m.syncJobs.WithLabelValues(string(status)).Inc()
	m.syncDuration.Observe(duration.Seconds())
	switch status {
	case models.SyncStatusCompleted:
		m.factRowsWritten.Add(float64(rows))
		atomic.AddUint64(&m.syncCompleted, 1)
	case models.SyncStatusFailed:
		atomic.AddUint64(&m.syncFailed, 1)
	}
}

// ObserveActions records how many actions a request produced.
func (m *MetricsService) ObserveActions(count int) {
	if m == nil {
		return
	}
	m.actionsGenerated.Observe(float64(count))
}

// Snapshot returns aggregated metrics suitable for operational endpoints.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	queryCount := atomic.LoadUint64(&m.factQueryCount)
	queryDuration := atomic.LoadUint64(&m.factQueryDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgQueryMs float64
	if queryCount > 0 {
		avgQueryMs = float64(queryDuration) / float64(queryCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:              requests,
		AverageRequestDurationMs:   avgRequestMs,
		FactQueryCount:             queryCount,
		AverageFactQueryDurationMs: avgQueryMs,
		SyncJobsCompleted:          atomic.LoadUint64(&m.syncCompleted),
		SyncJobsFailed:             atomic.LoadUint64(&m.syncFailed),
		Goroutines:                 runtime.NumGoroutine(),
		GeneratedAt:                time.Now().UTC(),
	}
}
