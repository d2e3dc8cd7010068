// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// InsertSnapshot records a platform health sample. TopWords is stored as a
// JSON array in a text column. Duplicate timestamps are replaced so a retry
// within the same period does not fail.
func (db *DB) InsertSnapshot(ctx context.Context, snap *models.Snapshot) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	topWords := snap.TopWords
	if topWords == nil {
		topWords = []string{}
	}
	wordsJSON, err := json.Marshal(topWords)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot top words: %w", err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO snapshots (timestamp, total_agents, total_posts, total_comments, active_agents_24h, avg_sentiment, top_words)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (timestamp) DO UPDATE SET
			total_agents = EXCLUDED.total_agents,
			total_posts = EXCLUDED.total_posts,
			total_comments = EXCLUDED.total_comments,
			active_agents_24h = EXCLUDED.active_agents_24h,
			avg_sentiment = EXCLUDED.avg_sentiment,
			top_words = EXCLUDED.top_words`,
		snap.Timestamp, snap.TotalAgents, snap.TotalPosts, snap.TotalComments,
		snap.ActiveAgents24h, snap.AvgSentiment, string(wordsJSON))
	metrics.RecordDBQuery("insert", "snapshots", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	metrics.SnapshotsRecorded.Inc()
	return nil
}

// SnapshotHistory returns snapshots within the window, oldest first, for
// trend charts. The default dashboard window is one week.
func (db *DB) SnapshotHistory(ctx context.Context, window time.Duration) ([]models.Snapshot, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	since := time.Now().UTC().Add(-window)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT timestamp, total_agents, total_posts, total_comments, active_agents_24h, avg_sentiment, top_words
		FROM snapshots
		WHERE timestamp >= ?
		ORDER BY timestamp ASC`, since)
	metrics.RecordDBQuery("select", "snapshots", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer closeWithLog(rows, "snapshot rows")

	var snapshots []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var wordsJSON string
		if err := rows.Scan(&snap.Timestamp, &snap.TotalAgents, &snap.TotalPosts,
			&snap.TotalComments, &snap.ActiveAgents24h, &snap.AvgSentiment, &wordsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if err := json.Unmarshal([]byte(wordsJSON), &snap.TopWords); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot top words: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
