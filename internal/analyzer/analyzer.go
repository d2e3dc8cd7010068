// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"github.com/tomtom215/moltwatch/internal/cache"
	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/database"
)

// Analyzer computes the derived views served by the dashboard: community
// sentiment, trending words, platform stats, and periodic snapshots. All
// heavy aggregates are cached; pollers invalidate the caches after a sync
// cycle via InvalidateAll.
type Analyzer struct {
	db  *database.DB
	cfg *config.AnalyticsConfig

	statsCache     *cache.Cache
	sentimentCache *cache.Cache
	trendsCache    *cache.Cache
}

// New creates an analyzer over the given database with per-concern caches
// sized from config.
func New(db *database.DB, cfg *config.AnalyticsConfig) *Analyzer {
	return &Analyzer{
		db:             db,
		cfg:            cfg,
		statsCache:     cache.New("stats", cfg.StatsCacheTTL),
		sentimentCache: cache.New("sentiment", cfg.SentimentCacheTTL),
		trendsCache:    cache.New("trends", cfg.SentimentCacheTTL),
	}
}

// InvalidateAll clears every analytics cache. Called after a poll cycle so
// the next dashboard request sees the new data.
func (a *Analyzer) InvalidateAll() {
	a.statsCache.Clear()
	a.sentimentCache.Clear()
	a.trendsCache.Clear()
}

// Stop terminates the cache cleanup goroutines.
func (a *Analyzer) Stop() {
	a.statsCache.Stop()
	a.sentimentCache.Stop()
	a.trendsCache.Stop()
}
