// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "propsight"

var (
	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation responses by model and outcome",
		},
		[]string{"model", "outcome"}, // outcome: "personalized", "fallback"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "End-to-end recommendation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	RecommendationResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_results",
			Help:      "Number of recommendations returned per response",
			Buckets:   []float64{0, 1, 5, 10, 20, 50},
		},
		[]string{"model"},
	)

	ScorerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scorer_duration_seconds",
			Help:      "Duration of a single model scorer run in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"scorer"},
	)

	ScorerFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scorer_fallbacks_total",
			Help:      "Times a scorer was replaced by the popularity ranking",
		},
		[]string{"scorer", "reason"}, // reason: "error", "panic", "empty", "unregistered"
	)

	// Interaction Matrix Metrics
	MatrixRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrix_rebuilds_total",
			Help:      "Interaction matrix rebuilds by status",
		},
		[]string{"status"},
	)

	MatrixRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matrix_rebuild_duration_seconds",
			Help:      "Duration of interaction matrix rebuilds in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	MatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_users",
			Help:      "Users in the current interaction matrix",
		},
	)

	MatrixListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_listings",
			Help:      "Listings in the current interaction matrix",
		},
	)

	MatrixVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_version",
			Help:      "Build number of the current interaction matrix",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of DuckDB queries in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_query_errors_total",
			Help:      "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Cache Metrics
	ResponseCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_total",
			Help:      "Response cache lookups by backend and result",
		},
		[]string{"backend", "result"}, // result: "hit", "miss", "error"
	)

	// Event Metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Recommendation events by topic and status",
		},
		[]string{"topic", "status"}, // status: "published", "dropped", "failed", "consumed"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRecommendation records a served recommendation response.
func RecordRecommendation(model string, fallback bool, results int, duration time.Duration) {
	outcome := "personalized"
	if fallback {
		outcome = "fallback"
	}
	RecommendationsTotal.WithLabelValues(model, outcome).Inc()
	RecommendationDuration.WithLabelValues(model).Observe(duration.Seconds())
	RecommendationResults.WithLabelValues(model).Observe(float64(results))
}

// ObserveScorer records the duration of one scorer run.
func ObserveScorer(scorer string, duration time.Duration) {
	ScorerDuration.WithLabelValues(scorer).Observe(duration.Seconds())
}

// RecordFallback records a scorer replaced by the popularity ranking.
func RecordFallback(scorer, reason string) {
	ScorerFallbacks.WithLabelValues(scorer, reason).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCacheLookup records a response cache lookup.
func RecordCacheLookup(backend, result string) {
	ResponseCache.WithLabelValues(backend, result).Inc()
}

// RecordEvent records an event publication or consumption.
func RecordEvent(topic, status string) {
	EventsTotal.WithLabelValues(topic, status).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
