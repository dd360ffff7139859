// Package metrics provides Prometheus metrics for data-access operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the SDK.
type Metrics struct {
	enabled bool

	// Transport metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	retriesTotal    prometheus.Counter
	failuresTotal   *prometheus.CounterVec

	// Request-cache metrics
	cacheEntriesTotal prometheus.Gauge
	cacheHitsTotal    *prometheus.CounterVec
	cacheMissTotal    prometheus.Counter
	cacheEvictions    *prometheus.CounterVec

	// Auth metrics
	authState       *prometheus.GaugeVec
	signInsTotal    *prometheus.CounterVec
	sessionRefreshs *prometheus.CounterVec
}

// New creates and registers Prometheus metrics on the default registerer.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	return NewWithRegistry(enabled, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics registered on the given registerer.
func NewWithRegistry(enabled bool, reg prometheus.Registerer) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	factory := promauto.With(reg)

	// Transport metrics
	m.requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "hotspot_requests_total",
		Help: "Total HTTP requests by method and status class",
	}, []string{"method", "status_class"})

	m.requestDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "hotspot_request_duration_seconds",
		Help:    "HTTP request duration in seconds, including retries",
		Buckets: prometheus.DefBuckets,
	})

	m.retriesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "hotspot_request_retries_total",
		Help: "Total retry attempts after a transient failure",
	})

	m.failuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "hotspot_request_failures_total",
		Help: "Total failed requests by normalized error kind",
	}, []string{"kind"})

	// Request-cache metrics
	m.cacheEntriesTotal = factory.NewGauge(prometheus.GaugeOpts{
		Name: "hotspot_cache_entries",
		Help: "Current number of entries in the request cache",
	})

	m.cacheHitsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "hotspot_cache_hits_total",
		Help: "Total cache hits by freshness",
	}, []string{"freshness"})

	m.cacheMissTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "hotspot_cache_misses_total",
		Help: "Total cache misses",
	})

	m.cacheEvictions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "hotspot_cache_evictions_total",
		Help: "Total cache evictions by reason",
	}, []string{"reason"})

	// Auth metrics
	m.authState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotspot_auth_state",
		Help: "Current auth coordinator state (1 for the active state)",
	}, []string{"state"})

	m.signInsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "hotspot_sign_ins_total",
		Help: "Total sign-in attempts by result",
	}, []string{"result"})

	m.sessionRefreshs = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "hotspot_session_refreshes_total",
		Help: "Total session refresh attempts by result",
	}, []string{"result"})

	return m
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(method, statusClass string, durationSeconds float64) {
	if !m.enabled {
		return
	}
	m.requestsTotal.WithLabelValues(method, statusClass).Inc()
	m.requestDuration.Observe(durationSeconds)
}

// RecordRetry records one retry attempt.
func (m *Metrics) RecordRetry() {
	if !m.enabled {
		return
	}
	m.retriesTotal.Inc()
}

// RecordFailure records a request that surfaced a normalized error.
func (m *Metrics) RecordFailure(kind string) {
	if !m.enabled {
		return
	}
	m.failuresTotal.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a cache hit; freshness is "fresh" or "stale".
func (m *Metrics) RecordCacheHit(freshness string) {
	if !m.enabled {
		return
	}
	m.cacheHitsTotal.WithLabelValues(freshness).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	if !m.enabled {
		return
	}
	m.cacheMissTotal.Inc()
}

// RecordCacheEviction records an eviction; reason is "invalidate" or "purge".
func (m *Metrics) RecordCacheEviction(reason string) {
	if !m.enabled {
		return
	}
	m.cacheEvictions.WithLabelValues(reason).Inc()
}

// SetCacheSize sets the current cache entry count.
func (m *Metrics) SetCacheSize(size float64) {
	if !m.enabled {
		return
	}
	m.cacheEntriesTotal.Set(size)
}

// SetAuthState marks the given coordinator state as active.
func (m *Metrics) SetAuthState(state string) {
	if !m.enabled {
		return
	}
	for _, s := range []string{"uninitialized", "loading", "authenticated", "unauthenticated"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		m.authState.WithLabelValues(s).Set(v)
	}
}

// RecordSignIn records a sign-in attempt; result is "success" or "failure".
func (m *Metrics) RecordSignIn(result string) {
	if !m.enabled {
		return
	}
	m.signInsTotal.WithLabelValues(result).Inc()
}

// RecordRefresh records a session refresh attempt.
func (m *Metrics) RecordRefresh(result string) {
	if !m.enabled {
		return
	}
	m.sessionRefreshs.WithLabelValues(result).Inc()
}
