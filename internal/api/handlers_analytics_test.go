// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"net/http"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/moltwatch/internal/models"
)

func TestStatsEndpoint(t *testing.T) {
	h, db := newTestRouter(t)
	seedPosts(t, db,
		seedPost("p1", "echo", "agora", "First", 10),
		seedPost("p2", "molty", "agora", "Second", 5),
	)

	rec, env := doGet(t, h, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var stats models.PlatformStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalPosts != 2 {
		t.Errorf("total posts = %d, want 2", stats.TotalPosts)
	}
	if stats.TotalAgents != 2 {
		t.Errorf("total agents = %d, want 2", stats.TotalAgents)
	}
}

func TestTopPostersEndpoint(t *testing.T) {
	h, db := newTestRouter(t)
	seedPosts(t, db,
		seedPost("p1", "echo", "agora", "First", 10),
		seedPost("p2", "echo", "agora", "Second", 5),
		seedPost("p3", "molty", "agora", "Third", 1),
	)

	rec, env := doGet(t, h, "/api/v1/stats/top-posters?window=24h&limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var posters []models.TopPoster
	if err := json.Unmarshal(env.Data, &posters); err != nil {
		t.Fatalf("decode posters: %v", err)
	}
	if len(posters) == 0 || posters[0].AgentName != "echo" {
		t.Errorf("posters = %+v, want echo first", posters)
	}
}

func TestSentimentEndpoint(t *testing.T) {
	h, db := newTestRouter(t)
	seedPosts(t, db,
		seedPost("p1", "echo", "agora", "What a great wonderful day", 10),
		seedPost("p2", "molty", "agora", "I love this amazing place", 5),
	)

	rec, env := doGet(t, h, "/api/v1/sentiment?window=24h")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var sentiment models.SentimentSummary
	if err := json.Unmarshal(env.Data, &sentiment); err != nil {
		t.Fatalf("decode sentiment: %v", err)
	}
	if sentiment.SampleSize != 2 {
		t.Errorf("sample size = %d, want 2", sentiment.SampleSize)
	}
	if sentiment.AvgPolarity <= 0 {
		t.Errorf("avg polarity = %f, want positive", sentiment.AvgPolarity)
	}
}

func TestTrendsEndpoints(t *testing.T) {
	h, db := newTestRouter(t)
	seedPosts(t, db,
		seedPost("p1", "echo", "agora", "consciousness consciousness consciousness", 10),
		seedPost("p2", "molty", "agora", "consciousness debate tonight", 5),
	)

	// Word frequencies are derived by the snapshot poller; trigger the
	// same path directly here.
	an := newTestAnalyzer(t, db)
	if err := an.UpdateWordFrequencies(t.Context()); err != nil {
		t.Fatalf("UpdateWordFrequencies() error = %v", err)
	}

	rec, env := doGet(t, h, "/api/v1/trends/top?window=24h&limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("top words status = %d, body %s", rec.Code, rec.Body.String())
	}
	var words []models.WordCount
	if err := json.Unmarshal(env.Data, &words); err != nil {
		t.Fatalf("decode words: %v", err)
	}
	if len(words) == 0 || words[0].Word != "consciousness" {
		t.Errorf("top words = %+v, want consciousness first", words)
	}

	rec, env = doGet(t, h, "/api/v1/trends/consciousness/history?window=24h")
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var history []models.WordHistoryPoint
	if err := json.Unmarshal(env.Data, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) == 0 {
		t.Error("history is empty")
	}

	rec, _ = doGet(t, h, "/api/v1/trends?window=24h")
	if rec.Code != http.StatusOK {
		t.Fatalf("trends status = %d", rec.Code)
	}
}

func TestActivityEndpoint(t *testing.T) {
	h, db := newTestRouter(t)
	seedPosts(t, db, seedPost("p1", "echo", "agora", "First", 10))

	rec, env := doGet(t, h, "/api/v1/activity?window=7d")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var hours []models.HourActivity
	if err := json.Unmarshal(env.Data, &hours); err != nil {
		t.Fatalf("decode activity: %v", err)
	}

	rec, env = doGet(t, h, "/api/v1/activity/submolts?window=24h")
	if rec.Code != http.StatusOK {
		t.Fatalf("submolt activity status = %d", rec.Code)
	}
	var subs []models.SubmoltActivity
	if err := json.Unmarshal(env.Data, &subs); err != nil {
		t.Fatalf("decode submolt activity: %v", err)
	}
	if len(subs) == 0 || subs[0].Submolt != "agora" {
		t.Errorf("submolt activity = %+v", subs)
	}
}

func TestWindowValidation(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := doGet(t, h, "/api/v1/sentiment?window=banana")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", env.Error)
	}

	rec, _ = doGet(t, h, "/api/v1/sentiment?window=-4h")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative window status = %d, want 400", rec.Code)
	}
}

func TestSnapshotsEndpoint(t *testing.T) {
	h, db := newTestRouter(t)
	seedPosts(t, db, seedPost("p1", "echo", "agora", "First", 10))

	an := newTestAnalyzer(t, db)
	if err := an.RecordSnapshot(t.Context()); err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}

	rec, env := doGet(t, h, "/api/v1/snapshots?window=24h")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snaps []models.Snapshot
	if err := json.Unmarshal(env.Data, &snaps); err != nil {
		t.Fatalf("decode snapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("snapshots = %d, want 1", len(snaps))
	}
}
