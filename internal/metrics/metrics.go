// Package metrics implements the Engine's Observer interface against
// Prometheus, plus a no-op implementation for tests and the CLI.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusObserver records cache hit/miss counts, postings-decode
// failures, boolean-fallback triggers, and per-query-type latency.
type PrometheusObserver struct {
	cacheHits               prometheus.Counter
	cacheMisses             prometheus.Counter
	postingsDecodeErrors    prometheus.Counter
	booleanFallbackTriggers prometheus.Counter
	queryLatency            *prometheus.HistogramVec
}

// NewPrometheusObserver registers the Engine's metrics against reg. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexdex_cache_hit_total",
			Help: "Result-window cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexdex_cache_miss_total",
			Help: "Result-window cache misses.",
		}),
		postingsDecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexdex_postings_decode_error_total",
			Help: "Postings lines that failed to decode mid-query.",
		}),
		booleanFallbackTriggers: factory.NewCounter(prometheus.CounterOpts{
			Name: "lexdex_boolean_fallback_triggered_total",
			Help: "Boolean queries that fell back to free-text ranking.",
		}),
		queryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lexdex_query_latency_seconds",
			Help:    "End-to-end query latency by query type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}),
	}
}

func (o *PrometheusObserver) CacheHit()                   { o.cacheHits.Inc() }
func (o *PrometheusObserver) CacheMiss()                  { o.cacheMisses.Inc() }
func (o *PrometheusObserver) PostingsDecodeError()        { o.postingsDecodeErrors.Inc() }
func (o *PrometheusObserver) BooleanFallbackTriggered()   { o.booleanFallbackTriggers.Inc() }

func (o *PrometheusObserver) QueryLatency(queryType string, seconds float64) {
	o.queryLatency.WithLabelValues(queryType).Observe(seconds)
}

// NullObserver discards every event; useful for tests and the offline
// CLI, where there's no metrics endpoint to scrape.
type NullObserver struct{}

func (NullObserver) CacheHit()                                      {}
func (NullObserver) CacheMiss()                                     {}
func (NullObserver) PostingsDecodeError()                           {}
func (NullObserver) BooleanFallbackTriggered()                      {}
func (NullObserver) QueryLatency(queryType string, seconds float64) {}
