// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/models"
)

// analyzerTestSemaphore serializes DuckDB-backed tests, matching the
// database package's test harness.
var analyzerTestSemaphore = make(chan struct{}, 1)

func setupAnalyzer(t *testing.T) (*Analyzer, *database.DB) {
	t.Helper()

	analyzerTestSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-analyzerTestSemaphore
	})

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	cfg := &config.AnalyticsConfig{
		SentimentSampleSize: 500,
		SentimentCacheTTL:   10 * time.Minute,
		StatsCacheTTL:       5 * time.Minute,
		TrendMinCount:       3,
		TrendTopWords:       20,
	}

	a := New(db, cfg)
	t.Cleanup(a.Stop)
	return a, db
}

func seedPost(t *testing.T, db *database.DB, id, title, content string, createdAt time.Time) {
	t.Helper()
	post := &models.Post{
		ID:        id,
		Author:    &models.PostAuthor{ID: "id-seeder", Name: "seeder"},
		Title:     title,
		Content:   content,
		Upvotes:   1,
		CreatedAt: createdAt,
	}
	if _, err := db.UpsertPost(context.Background(), post, time.Now().UTC()); err != nil {
		t.Fatalf("Failed to seed post %s: %v", id, err)
	}
}

func TestCommunitySentiment(t *testing.T) {
	a, db := setupAnalyzer(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedPost(t, db, "p-pos", "great wonderful amazing", "love this excellent work", now.Add(-time.Hour))
	seedPost(t, db, "p-neg", "terrible awful broken", "hate this mess", now.Add(-time.Hour))
	seedPost(t, db, "p-neu", "weekly schedule update", "meeting moved", now.Add(-time.Hour))

	summary, err := a.CommunitySentiment(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CommunitySentiment failed: %v", err)
	}

	if summary.SampleSize != 3 {
		t.Errorf("Expected sample size 3, got %d", summary.SampleSize)
	}
	if summary.Positive != 1 || summary.Negative != 1 || summary.Neutral != 1 {
		t.Errorf("Unexpected label counts: +%d =%d -%d",
			summary.Positive, summary.Neutral, summary.Negative)
	}

	// Second call is served from cache even after the underlying data
	// changes.
	seedPost(t, db, "p-later", "terrible terrible terrible", "awful", now)
	cached, err := a.CommunitySentiment(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CommunitySentiment cached call failed: %v", err)
	}
	if cached.SampleSize != 3 {
		t.Errorf("Expected cached sample size 3, got %d", cached.SampleSize)
	}

	// Invalidation picks up the new post.
	a.InvalidateAll()
	fresh, err := a.CommunitySentiment(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CommunitySentiment after invalidation failed: %v", err)
	}
	if fresh.SampleSize != 4 {
		t.Errorf("Expected fresh sample size 4, got %d", fresh.SampleSize)
	}
}

func TestCommunitySentimentEmpty(t *testing.T) {
	a, _ := setupAnalyzer(t)

	summary, err := a.CommunitySentiment(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("CommunitySentiment failed: %v", err)
	}
	if summary.SampleSize != 0 {
		t.Errorf("Expected empty sample, got %d", summary.SampleSize)
	}
	if summary.Label != models.SentimentNeutral {
		t.Errorf("Expected neutral label on empty sample, got %s", summary.Label)
	}
	if summary.AvgPolarity != 0 {
		t.Errorf("Expected 0 polarity on empty sample, got %f", summary.AvgPolarity)
	}
}

func TestUpdateWordFrequenciesPipeline(t *testing.T) {
	a, _ := setupAnalyzer(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		seedPost(t, a.db, fmt.Sprintf("p-%d", i),
			"emergence in multiagent systems", "alignment discussion", now.Add(-30*time.Minute))
	}

	if err := a.UpdateWordFrequencies(ctx); err != nil {
		t.Fatalf("UpdateWordFrequencies failed: %v", err)
	}

	words, err := a.TopWords(ctx, 24*time.Hour, 10)
	if err != nil {
		t.Fatalf("TopWords failed: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("Expected extracted words")
	}

	byWord := make(map[string]int)
	for _, w := range words {
		byWord[w.Word] = w.Count
	}
	if byWord["emergence"] != 4 {
		t.Errorf("Expected emergence count 4, got %d", byWord["emergence"])
	}
	if _, ok := byWord["the"]; ok {
		t.Error("Stop word leaked into frequency table")
	}

	history, err := a.WordHistory(ctx, "Emergence", 24*time.Hour)
	if err != nil {
		t.Fatalf("WordHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 history point, got %d", len(history))
	}
	if history[0].Count != 4 {
		t.Errorf("Expected history count 4, got %d", history[0].Count)
	}
}

func TestRecordSnapshot(t *testing.T) {
	a, db := setupAnalyzer(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedPost(t, db, "p-snap", "great emergence discussion", "wonderful alignment progress", now.Add(-30*time.Minute))
	if err := a.UpdateWordFrequencies(ctx); err != nil {
		t.Fatalf("UpdateWordFrequencies failed: %v", err)
	}

	if err := a.RecordSnapshot(ctx); err != nil {
		t.Fatalf("RecordSnapshot failed: %v", err)
	}

	history, err := a.SnapshotHistory(ctx, 168*time.Hour)
	if err != nil {
		t.Fatalf("SnapshotHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(history))
	}

	snap := history[0]
	if snap.TotalPosts != 1 {
		t.Errorf("Expected 1 total post, got %d", snap.TotalPosts)
	}
	if snap.AvgSentiment <= 0 {
		t.Errorf("Expected positive average sentiment, got %f", snap.AvgSentiment)
	}
	if len(snap.TopWords) == 0 {
		t.Error("Expected top words in snapshot")
	}
}

func TestPlatformStatsCached(t *testing.T) {
	a, db := setupAnalyzer(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedPost(t, db, "p-stat", "title", "content", now.Add(-time.Hour))

	stats, err := a.PlatformStats(ctx)
	if err != nil {
		t.Fatalf("PlatformStats failed: %v", err)
	}
	if stats.TotalPosts != 1 {
		t.Errorf("Expected 1 post, got %d", stats.TotalPosts)
	}

	seedPost(t, db, "p-stat-2", "title", "content", now)
	cached, err := a.PlatformStats(ctx)
	if err != nil {
		t.Fatalf("PlatformStats cached call failed: %v", err)
	}
	if cached.TotalPosts != 1 {
		t.Errorf("Expected cached count 1, got %d", cached.TotalPosts)
	}
}
