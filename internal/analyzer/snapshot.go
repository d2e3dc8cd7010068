// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"context"
	"time"

	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/models"
)

// snapshotTopWordCount is how many top words each snapshot records.
const snapshotTopWordCount = 10

// RecordSnapshot samples the current platform state and stores it for trend
// history: headline counters, the average sentiment of the last hour, and
// the current top words. The snapshot timestamp is truncated to the hour so
// a retried run replaces its own row.
func (a *Analyzer) RecordSnapshot(ctx context.Context) error {
	stats, err := a.db.PlatformStats(ctx)
	if err != nil {
		return err
	}

	sentiment, err := a.CommunitySentiment(ctx, time.Hour)
	if err != nil {
		return err
	}

	topWords, err := a.db.TopWords(ctx, 24*time.Hour, snapshotTopWordCount)
	if err != nil {
		return err
	}

	words := make([]string, 0, len(topWords))
	for _, w := range topWords {
		words = append(words, w.Word)
	}

	snap := &models.Snapshot{
		Timestamp:       time.Now().UTC().Truncate(time.Hour),
		TotalAgents:     stats.TotalAgents,
		TotalPosts:      stats.TotalPosts,
		TotalComments:   stats.TotalComments,
		ActiveAgents24h: stats.ActiveAgents24h,
		AvgSentiment:    sentiment.AvgPolarity,
		TopWords:        words,
	}

	if err := a.db.InsertSnapshot(ctx, snap); err != nil {
		return err
	}

	logging.Info().
		Time("timestamp", snap.Timestamp).
		Int("total_posts", snap.TotalPosts).
		Float64("avg_sentiment", snap.AvgSentiment).
		Msg("Platform snapshot recorded")
	return nil
}
