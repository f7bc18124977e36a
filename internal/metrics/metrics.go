// Package metrics holds the Prometheus collectors of the recommender.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "role_recommender_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "role_recommender_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "role_recommender_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Recommendation Metrics
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "role_recommender_comparisons_total",
			Help: "Total number of benchmark-vs-user comparisons",
		},
		[]string{"label_set", "class"},
	)

	InvalidOverridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "role_recommender_invalid_overrides_total",
			Help: "Total number of overrides replaced by a default value",
		},
		[]string{"label_set", "reason"},
	)

	ScoreDelta = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "role_recommender_score_delta_percent",
			Help:    "User score minus benchmark score, in percentage points",
			Buckets: prometheus.LinearBuckets(-50, 10, 11),
		},
		[]string{"label_set"},
	)

	// Artifact Metrics
	ArtifactAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "role_recommender_label_set_available",
			Help: "Whether a label set's artifacts loaded (1) or not (0)",
		},
		[]string{"label_set", "component"},
	)

	CatalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "role_recommender_catalog_load_duration_seconds",
			Help:    "Duration of artifact catalog loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordComparison records a completed comparison.
func RecordComparison(labelSet, class string, delta float64) {
	ComparisonsTotal.WithLabelValues(labelSet, class).Inc()
	ScoreDelta.WithLabelValues(labelSet).Observe(delta)
}

// RecordInvalidOverride records an override that could not be applied as given.
func RecordInvalidOverride(labelSet, reason string) {
	InvalidOverridesTotal.WithLabelValues(labelSet, reason).Inc()
}

// SetAvailable publishes whether a component of a label set is usable.
func SetAvailable(labelSet, component string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	ArtifactAvailable.WithLabelValues(labelSet, component).Set(v)
}
