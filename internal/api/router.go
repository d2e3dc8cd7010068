// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/moltwatch/internal/analyzer"
	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/middleware"
	"github.com/tomtom215/moltwatch/internal/ratelimit"
	moltsync "github.com/tomtom215/moltwatch/internal/sync"
	"github.com/tomtom215/moltwatch/internal/websocket"
)

// Router wires the dashboard API handlers to their dependencies.
type Router struct {
	db       *database.DB
	analyzer *analyzer.Analyzer
	pool     *ratelimit.KeyPool
	hub      *websocket.Hub
	manager  *moltsync.Manager
	perf      *middleware.PerformanceMonitor
	cfg       *config.Config
	started   time.Time
	wsLimiter *upgradeLimiter
}

// NewRouter creates a Router. The sync manager and hub may be nil in
// tests that only exercise read endpoints.
func NewRouter(db *database.DB, an *analyzer.Analyzer, pool *ratelimit.KeyPool,
	hub *websocket.Hub, manager *moltsync.Manager, cfg *config.Config) *Router {
	return &Router{
		db:       db,
		analyzer: an,
		pool:     pool,
		hub:      hub,
		manager:  manager,
		perf:     middleware.NewPerformanceMonitor(1000),
		cfg:      cfg,
		started:  time.Now(),
		// 2s refill with burst 5 tolerates a page reload, not a loop.
		wsLimiter: newUpgradeLimiter(2*time.Second, 5),
	}
}

// Handler builds the chi mux with the full middleware stack and all
// dashboard routes.
func (rt *Router) Handler() chi.Router {
	cm := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: rt.cfg.API.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "If-None-Match"},
		CORSMaxAge:         86400,
		RateLimitRequests:  rt.cfg.API.RateLimitReqs,
		RateLimitWindow:    rt.cfg.API.RateLimitWindow,
	})

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(APISecurityHeaders())
	r.Use(cm.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(rt.perf.Middleware)
	r.Use(middleware.Compression)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cm.RateLimit())

			r.Get("/posts", rt.handlePosts)
			r.Get("/posts/{id}", rt.handlePost)
			r.Get("/agents", rt.handleAgents)
			r.Get("/agents/new-today", rt.handleNewAgents)
			r.Get("/agents/{name}", rt.handleAgent)
			r.Get("/submolts", rt.handleSubmolts)
			r.Get("/submolts/{name}", rt.handleSubmolt)
		})

		r.Group(func(r chi.Router) {
			r.Use(cm.RateLimitAnalytics())

			r.Get("/stats", rt.handleStats)
			r.Get("/stats/top-posters", rt.handleTopPosters)
			r.Get("/activity", rt.handleActivity)
			r.Get("/activity/submolts", rt.handleSubmoltActivity)
			r.Get("/sentiment", rt.handleSentiment)
			r.Get("/trends", rt.handleTrends)
			r.Get("/trends/top", rt.handleTopWords)
			r.Get("/trends/{word}/history", rt.handleWordHistory)
			r.Get("/snapshots", rt.handleSnapshots)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(cm.RateLimitHealth())

		r.Get("/health/live", rt.handleHealthLive)
		r.Get("/health/ready", rt.handleHealthReady)
		r.Get("/status/ratelimit", rt.handleRateLimitStatus)
		r.Get("/status/performance", rt.handlePerformanceStatus)
	})

	r.With(cm.RateLimitWebSocket()).Get("/ws", rt.handleWebSocket)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
