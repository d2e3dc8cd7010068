// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
Package middleware provides HTTP middleware for the dashboard API.

All middlewares use the standard func(http.Handler) http.Handler shape so
they compose with chi's Use:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
	r.Use(perfMonitor.Middleware)

Components:

  - RequestID: X-Request-ID propagation plus logging context seeding
  - PrometheusMetrics: request counters, latency histograms, in-flight gauge
  - Compression: gzip for clients that accept it (skips WebSocket upgrades)
  - PerformanceMonitor: sliding window of request timings with per-endpoint
    percentiles, surfaced by the status endpoint
*/
package middleware
