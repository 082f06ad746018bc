package metrics

import "github.com/prometheus/client_golang/prometheus"

// Response cache Prometheus metrics.
var (
	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promemo",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CacheInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "promemo",
			Name:      "response_cache_invalidations_total",
			Help:      "Total cache entries removed by pattern invalidation",
		},
	)
)

var cacheMetricsRegistered bool

// RegisterCacheMetrics registers Prometheus cache metrics. Must be called once from main.
func RegisterCacheMetrics() {
	if cacheMetricsRegistered {
		return
	}
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(CacheInvalidationsTotal)
	cacheMetricsRegistered = true
}
