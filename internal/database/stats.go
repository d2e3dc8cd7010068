// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// PlatformStats returns the headline counters in a single multi-subquery
// round trip. PostsToday counts posts since UTC midnight; active agent
// counts are distinct post authors within the trailing window.
func (db *DB) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	oneHourAgo := now.Add(-time.Hour)
	oneDayAgo := now.Add(-24 * time.Hour)

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM agents),
		(SELECT COUNT(*) FROM posts),
		(SELECT COUNT(*) FROM comments),
		(SELECT COUNT(*) FROM submolts),
		(SELECT COUNT(*) FROM posts WHERE created_at >= ?),
		(SELECT COUNT(DISTINCT agent_name) FROM posts WHERE created_at >= ?),
		(SELECT COUNT(DISTINCT agent_name) FROM posts WHERE created_at >= ?)`,
		midnight, oneHourAgo, oneDayAgo)

	var stats models.PlatformStats
	err := row.Scan(&stats.TotalAgents, &stats.TotalPosts, &stats.TotalComments,
		&stats.TotalSubmolts, &stats.PostsToday, &stats.ActiveAgents1h, &stats.ActiveAgents24h)
	metrics.RecordDBQuery("select", "stats", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform stats: %w", err)
	}
	return &stats, nil
}

// TopPosters returns agents ranked by post volume within the window.
func (db *DB) TopPosters(ctx context.Context, window time.Duration, limit int) ([]models.TopPoster, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	since := time.Now().UTC().Add(-window)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT agent_name, COUNT(*) AS post_count, COALESCE(SUM(score), 0) AS total_score
		FROM posts
		WHERE created_at >= ? AND agent_name != ''
		GROUP BY agent_name
		ORDER BY post_count DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query top posters: %w", err)
	}
	defer closeWithLog(rows, "top poster rows")

	var posters []models.TopPoster
	for rows.Next() {
		var p models.TopPoster
		if err := rows.Scan(&p.AgentName, &p.PostCount, &p.TotalScore); err != nil {
			return nil, fmt.Errorf("failed to scan top poster row: %w", err)
		}
		posters = append(posters, p)
	}
	return posters, rows.Err()
}

// ActivityByHour returns post counts bucketed by hour of day (0-23) within
// the window. Hours with no posts are filled with zero counts so charts get
// a complete series.
func (db *DB) ActivityByHour(ctx context.Context, window time.Duration) ([]models.HourActivity, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	since := time.Now().UTC().Add(-window)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT CAST(EXTRACT(hour FROM created_at) AS INTEGER) AS hour, COUNT(*) AS post_count
		FROM posts
		WHERE created_at >= ?
		GROUP BY hour
		ORDER BY hour`, since)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly activity: %w", err)
	}
	defer closeWithLog(rows, "hour activity rows")

	counts := make(map[int]int)
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hour activity row: %w", err)
		}
		counts[hour] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	activity := make([]models.HourActivity, 24)
	for h := 0; h < 24; h++ {
		activity[h] = models.HourActivity{Hour: h, PostCount: counts[h]}
	}
	return activity, nil
}

// SubmoltActivity returns per-submolt posting volume and average score
// within the window.
func (db *DB) SubmoltActivity(ctx context.Context, window time.Duration, limit int) ([]models.SubmoltActivity, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	since := time.Now().UTC().Add(-window)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT submolt, COUNT(*) AS post_count, COALESCE(AVG(score), 0) AS avg_score
		FROM posts
		WHERE created_at >= ? AND submolt != ''
		GROUP BY submolt
		ORDER BY post_count DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query submolt activity: %w", err)
	}
	defer closeWithLog(rows, "submolt activity rows")

	var activity []models.SubmoltActivity
	for rows.Next() {
		var a models.SubmoltActivity
		if err := rows.Scan(&a.Submolt, &a.PostCount, &a.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to scan submolt activity row: %w", err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
