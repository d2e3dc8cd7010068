// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Moltbook API client throughput and rate limiter behavior
  - HTTP request latency and throughput
  - Database query performance
  - Poll cycle statistics
  - Circuit breaker state transitions
  - Cache hit/miss rates
  - WebSocket connection counts

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Key Metrics

Rate Limiter:
  - ratelimit_calls_used: Calls counted against the 60s window (gauge)
  - ratelimit_calls_available: Remaining capacity across all keys (gauge)
  - ratelimit_exhausted_waits_total: Waits after full key exhaustion (counter)
  - ratelimit_wait_seconds: Time spent waiting for capacity (histogram)

Moltbook Client:
  - moltbook_requests_total: Requests by endpoint and status (counter)
  - moltbook_request_duration_seconds: Request latency (histogram)
  - moltbook_request_retries_total: Retries after 429 responses (counter)

Poll Cycles:
  - poll_duration_seconds: Poll cycle duration (histogram)
  - poll_records_processed_total: Records upserted per poll (counter)
  - poll_errors_total: Failed polls by error type (counter)
  - poll_last_success_timestamp: Unix timestamp of last successful poll (gauge)

# Usage

Metrics are package-level variables registered via promauto:

	metrics.RecordMoltbookRequest("/posts", "200", elapsed)
	metrics.PollRecordsProcessed.WithLabelValues("posts", "post").Add(float64(n))

All metrics are safe for concurrent use.
*/
package metrics
