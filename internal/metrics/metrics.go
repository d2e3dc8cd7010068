// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Moltbook API client throughput and rate limiting
// - Database query performance (DuckDB)
// - Poll cycle metrics
// - Cache efficiency
// - WebSocket connections

var (
	// Rate Limiter Metrics
	RateLimiterUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratelimit_calls_used",
			Help: "Total calls currently counted against the rate limit window across all keys",
		},
	)

	RateLimiterAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratelimit_calls_available",
			Help: "Remaining call capacity in the current rate limit window across all keys",
		},
	)

	RateLimiterExhaustedWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratelimit_exhausted_waits_total",
			Help: "Number of times all API keys were exhausted and a caller had to wait",
		},
	)

	RateLimiterWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratelimit_wait_seconds",
			Help:    "Time callers spent waiting for rate limit capacity",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 30, 45, 60},
		},
	)

	// Moltbook API Client Metrics
	MoltbookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moltbook_requests_total",
			Help: "Total number of requests to the Moltbook API",
		},
		[]string{"endpoint", "status_code"},
	)

	MoltbookRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moltbook_request_duration_seconds",
			Help:    "Moltbook API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	MoltbookRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moltbook_request_retries_total",
			Help: "Total number of Moltbook API request retries after 429 responses",
		},
		[]string{"endpoint"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Poll Cycle Metrics
	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poll_duration_seconds",
			Help:    "Duration of poll cycles in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"poller"},
	)

	PollRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_records_processed_total",
			Help: "Total number of records processed during polls",
		},
		[]string{"poller", "record_type"}, // record_type: "post", "comment", "agent", "submolt"
	)

	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_errors_total",
			Help: "Total number of poll errors",
		},
		[]string{"poller", "error_type"}, // "moltbook_api", "database", "other"
	)

	PollLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poll_last_success_timestamp",
			Help: "Unix timestamp of last successful poll",
		},
		[]string{"poller"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "stats", "sentiment", "trends"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Analytics Metrics
	SentimentSamplesAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_samples_analyzed_total",
			Help: "Total number of posts analyzed for sentiment",
		},
	)

	TrendWordsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trend_words_extracted_total",
			Help: "Total number of words extracted for trend analysis",
		},
	)

	SnapshotsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_snapshots_recorded_total",
			Help: "Total number of hourly activity snapshots recorded",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordMoltbookRequest records a Moltbook API client request metric
func RecordMoltbookRequest(endpoint, statusCode string, duration time.Duration) {
	MoltbookRequestsTotal.WithLabelValues(endpoint, statusCode).Inc()
	MoltbookRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordPoll records a completed poll cycle
func RecordPoll(poller string, duration time.Duration, err error) {
	PollDuration.WithLabelValues(poller).Observe(duration.Seconds())
	if err == nil {
		PollLastSuccess.WithLabelValues(poller).Set(float64(time.Now().Unix()))
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
