// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"net/http"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/websocket"
)

// upgradeLimiter throttles websocket upgrade attempts per remote IP
// with a token bucket. Reconnect storms from one misbehaving dashboard
// tab should not crowd out other clients.
type upgradeLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
	burst    int
}

// maxTrackedIPs bounds the limiter map. The map resets when full,
// which briefly refills every bucket; acceptable for a public
// read-only endpoint.
const maxTrackedIPs = 1000

func newUpgradeLimiter(interval time.Duration, burst int) *upgradeLimiter {
	return &upgradeLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		burst:    burst,
	}
}

// allow reports whether the given IP may attempt an upgrade now.
func (ul *upgradeLimiter) allow(ip string) bool {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	lim, ok := ul.limiters[ip]
	if !ok {
		if len(ul.limiters) >= maxTrackedIPs {
			ul.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(ul.interval), ul.burst)
		ul.limiters[ip] = lim
	}
	return lim.Allow()
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (rt *Router) getUpgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      rt.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. Browsers always send Origin on websocket
// connects; a missing header means a non-browser client, which is
// allowed since the data is public anyway.
func (rt *Router) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range rt.cfg.API.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.CtxWarn(r.Context()).
		Str("origin", sanitizeLogValue(origin)).
		Msg("websocket connection rejected from unauthorized origin")
	return false
}

// handleWebSocket serves GET /ws, upgrading the connection and handing
// it to the hub.
func (rt *Router) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if rt.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"websocket service unavailable", nil)
		return
	}

	if !rt.wsLimiter.allow(r.RemoteAddr) {
		respondError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
			"too many websocket connection attempts", nil)
		return
	}

	upgrader := rt.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.CtxErr(r.Context(), err).Msg("websocket upgrade failed")
		return
	}

	logging.CtxInfo(r.Context()).
		Str("remote", sanitizeLogValue(r.RemoteAddr)).
		Msg("websocket connection upgraded")

	client := websocket.NewClient(rt.hub, conn)
	rt.hub.Register <- client
	client.Start()
}
