package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panoram_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records document store latency by operation and collection.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "panoram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// RecommendationLatency records end-to-end strategy latency.
	RecommendationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "panoram_recommendation_latency_seconds",
		Help:    "Recommendation strategy latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	// RecommendationResults counts strategy invocations by outcome.
	RecommendationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panoram_recommendation_results_total",
		Help: "Recommendation strategy invocations by outcome",
	}, []string{"strategy", "outcome"})

	// RecommendationCacheEvents counts cache hits and misses per strategy.
	RecommendationCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panoram_recommendation_cache_events_total",
		Help: "Recommendation cache lookups by result",
	}, []string{"strategy", "result"})

	// EnrichmentOutcomes counts processed catalog entries by outcome.
	EnrichmentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panoram_enrichment_movies_total",
		Help: "Movies processed by the enrichment job",
	}, []string{"outcome"})

	// ExternalRequests counts outbound metadata API calls by status.
	ExternalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panoram_external_requests_total",
		Help: "Outbound metadata API requests by status",
	}, []string{"service", "status"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, collection string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	}
}

// TrackRecommendation returns a function recording the latency and outcome of one strategy call.
func TrackRecommendation(strategy string) func(err error) {
	start := time.Now()
	return func(err error) {
		RecommendationLatency.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		RecommendationResults.WithLabelValues(strategy, outcome).Inc()
	}
}
