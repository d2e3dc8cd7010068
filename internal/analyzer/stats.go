// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"context"
	"time"

	"github.com/tomtom215/moltwatch/internal/cache"
	"github.com/tomtom215/moltwatch/internal/models"
)

// PlatformStats returns the cached headline counters, refreshing from the
// database when the cache entry has expired.
func (a *Analyzer) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	const key = "stats:platform"
	if cached, ok := a.statsCache.Get(key); ok {
		return cached.(*models.PlatformStats), nil
	}

	stats, err := a.db.PlatformStats(ctx)
	if err != nil {
		return nil, err
	}

	a.statsCache.Set(key, stats)
	return stats, nil
}

// TopPosters returns agents ranked by post volume within the window.
func (a *Analyzer) TopPosters(ctx context.Context, window time.Duration, limit int) ([]models.TopPoster, error) {
	key := cache.GenerateKey("topposters", []interface{}{window.String(), limit})
	if cached, ok := a.statsCache.Get(key); ok {
		return cached.([]models.TopPoster), nil
	}

	posters, err := a.db.TopPosters(ctx, window, limit)
	if err != nil {
		return nil, err
	}

	a.statsCache.Set(key, posters)
	return posters, nil
}

// ActivityByHour returns the hour-of-day posting histogram for the window.
func (a *Analyzer) ActivityByHour(ctx context.Context, window time.Duration) ([]models.HourActivity, error) {
	key := cache.GenerateKey("hourly", window.String())
	if cached, ok := a.statsCache.Get(key); ok {
		return cached.([]models.HourActivity), nil
	}

	activity, err := a.db.ActivityByHour(ctx, window)
	if err != nil {
		return nil, err
	}

	a.statsCache.Set(key, activity)
	return activity, nil
}

// SubmoltActivity returns per-submolt posting volume for the window.
func (a *Analyzer) SubmoltActivity(ctx context.Context, window time.Duration, limit int) ([]models.SubmoltActivity, error) {
	key := cache.GenerateKey("submolts", []interface{}{window.String(), limit})
	if cached, ok := a.statsCache.Get(key); ok {
		return cached.([]models.SubmoltActivity), nil
	}

	activity, err := a.db.SubmoltActivity(ctx, window, limit)
	if err != nil {
		return nil, err
	}

	a.statsCache.Set(key, activity)
	return activity, nil
}

// NewAgentsToday returns agents first seen since UTC midnight.
func (a *Analyzer) NewAgentsToday(ctx context.Context, limit int) ([]models.AgentRecord, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return a.db.NewAgentsSince(ctx, midnight, limit)
}

// SnapshotHistory returns recorded platform snapshots within the window.
func (a *Analyzer) SnapshotHistory(ctx context.Context, window time.Duration) ([]models.Snapshot, error) {
	return a.db.SnapshotHistory(ctx, window)
}
