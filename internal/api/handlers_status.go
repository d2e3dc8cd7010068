// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/ratelimit"
)

// handleHealthLive serves GET /health/live. It answers as long as the
// process is serving requests.
func (rt *Router) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, r, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": int64(time.Since(rt.started).Seconds()),
	}, started)
}

// handleHealthReady serves GET /health/ready. Readiness requires a
// reachable database; the poller state is reported but does not fail
// the check since the dashboard stays useful on stored data even when
// Moltbook is unreachable.
func (rt *Router) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if err := rt.db.Ping(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "DATABASE_ERROR",
			"database not reachable", nil)
		return
	}

	body := map[string]interface{}{
		"status":   "ready",
		"database": "ok",
	}
	if rt.manager != nil {
		if last := rt.manager.LastPollTime(); !last.IsZero() {
			body["last_poll"] = last.UTC().Format(time.RFC3339)
		}
	}
	if rt.hub != nil {
		body["websocket_clients"] = rt.hub.GetClientCount()
	}

	respondSuccess(w, r, body, started)
}

// rateLimitStatus is the pool snapshot with key names masked. Raw API
// keys never leave the process, not even to the local dashboard.
type rateLimitStatus struct {
	TotalUsed      int                            `json:"total_used"`
	TotalAvailable int                            `json:"total_available"`
	Capacity       int                            `json:"capacity"`
	Keys           map[string]ratelimit.KeyStatus `json:"keys"`
}

// handleRateLimitStatus serves GET /status/ratelimit.
func (rt *Router) handleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	status := rt.pool.Status()

	masked := rateLimitStatus{
		TotalUsed:      status.TotalUsed,
		TotalAvailable: status.TotalAvailable,
		Capacity:       status.Capacity,
		Keys:           make(map[string]ratelimit.KeyStatus, len(status.PerKey)),
	}
	for key, ks := range status.PerKey {
		masked.Keys[logging.MaskKey(key)] = ks
	}

	respondSuccess(w, r, masked, started)
}

// handlePerformanceStatus serves GET /status/performance with
// per-endpoint latency percentiles from the in-process monitor.
func (rt *Router) handlePerformanceStatus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, r, map[string]interface{}{
		"endpoints": rt.perf.GetStats(),
	}, started)
}
