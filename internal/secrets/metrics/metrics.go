package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	ResolveDuration prometheus.Histogram
	ResolveFailures *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conduit_secret_cache_hits_total",
			Help: "Total number of secret resolutions served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conduit_secret_cache_misses_total",
			Help: "Total number of secret resolutions requiring a backend fetch",
		}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "conduit_secret_resolve_duration_seconds",
			Help:    "Duration of uncached secret resolutions (invocation critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ResolveFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "conduit_secret_resolve_failures_total",
			Help: "Total number of failed secret resolutions by error code",
		}, []string{"code"}),
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) ObserveResolve(start time.Time) {
	if m == nil {
		return
	}
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementFailure(code string) {
	if m == nil {
		return
	}
	m.ResolveFailures.WithLabelValues(code).Inc()
}
