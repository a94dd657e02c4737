package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/student-portal-api/internal/models"
)

// MetricsSnapshot is a compact view of the collected metrics for JSON consumers.
type MetricsSnapshot struct {
	CacheHitRatio            float64             `json:"cache_hit_ratio"`
	CacheHits                uint64              `json:"cache_hits"`
	CacheMisses              uint64              `json:"cache_misses"`
	RequestsTotal            uint64              `json:"requests_total"`
	AverageRequestDurationMs float64             `json:"average_request_duration_ms"`
	CacheInvalidations       uint64              `json:"cache_invalidations"`
	Expiry                   models.ExpiryCounts `json:"expiry"`
	ExpirySweptAt            *time.Time          `json:"expiry_swept_at,omitempty"`
	Goroutines               int                 `json:"goroutines"`
	GeneratedAt              time.Time           `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheInvalidations *prometheus.CounterVec
	academicDays       *prometheus.CounterVec
	communityContent   *prometheus.GaugeVec
	expirySweepTime    prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	invalidationCount    uint64
	requestCount         uint64
	requestDurationTotal uint64
	expiry               atomic.Value
	sweptAt              atomic.Value
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	cacheInvalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_invalidations_total",
		Help: "Cache invalidations by pattern and outcome",
	}, []string{"pattern", "outcome"})

	academicDays := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academic_days_resolved_total",
		Help: "Academic days resolved by resulting state",
	}, []string{"state"})

	communityContent := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "community_content",
		Help: "Community threads and replies by expiry status at the last sweep",
	}, []string{"kind", "status"})

	expirySweepTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "community_expiry_sweep_timestamp_seconds",
		Help: "Unix time of the last completed expiry sweep",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		cacheInvalidations, academicDays, communityContent, expirySweepTime, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		cacheInvalidations: cacheInvalidations,
		academicDays:       academicDays,
		communityContent:   communityContent,
		expirySweepTime:    expirySweepTime,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordInvalidation counts a cache invalidation attempt for pattern.
func (m *MetricsService) RecordInvalidation(pattern string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cacheInvalidations.WithLabelValues(pattern, outcome).Inc()
	if err == nil {
		atomic.AddUint64(&m.invalidationCount, 1)
	}
}

// RecordAcademicDay counts a resolved day by its state.
func (m *MetricsService) RecordAcademicDay(state models.AcademicDayState) {
	if m == nil {
		return
	}
	m.academicDays.WithLabelValues(string(state)).Inc()
}

// RecordExpiryCounts publishes the result of an expiry sweep.
func (m *MetricsService) RecordExpiryCounts(counts models.ExpiryCounts, at time.Time) {
	if m == nil {
		return
	}
	m.communityContent.WithLabelValues("thread", "live").Set(float64(counts.LiveThreads))
	m.communityContent.WithLabelValues("thread", "expired").Set(float64(counts.ExpiredThreads))
	m.communityContent.WithLabelValues("reply", "live").Set(float64(counts.LiveReplies))
	m.communityContent.WithLabelValues("reply", "expired").Set(float64(counts.ExpiredReplies))
	m.expirySweepTime.Set(float64(at.Unix()))
	m.expiry.Store(counts)
	m.sweptAt.Store(at.UTC())
}

// Snapshot returns aggregated metrics suitable for JSON endpoints.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	snapshot := MetricsSnapshot{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheInvalidations:       atomic.LoadUint64(&m.invalidationCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
	if counts, ok := m.expiry.Load().(models.ExpiryCounts); ok {
		snapshot.Expiry = counts
	}
	if at, ok := m.sweptAt.Load().(time.Time); ok {
		snapshot.ExpirySweptAt = &at
	}
	return snapshot
}
