// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Default windows per endpoint. Activity and history charts default to
// a week, point-in-time summaries to a day.
const (
	defaultStatsWindow   = 24 * time.Hour
	defaultHistoryWindow = 7 * 24 * time.Hour
)

// handleStats serves GET /api/v1/stats, the cached platform totals.
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	stats, err := rt.analyzer.PlatformStats(r.Context())
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, stats, started)
}

// handleTopPosters serves GET /api/v1/stats/top-posters.
func (rt *Router) handleTopPosters(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultStatsWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	limit, err := getIntParam(r, "limit", 10)
	if err != nil || limit < 1 || limit > rt.cfg.API.MaxPageSize {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100", nil)
		return
	}

	posters, err := rt.analyzer.TopPosters(r.Context(), window, limit)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, posters, started)
}

// handleActivity serves GET /api/v1/activity, post counts grouped by
// hour of day over the window.
func (rt *Router) handleActivity(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultHistoryWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	activity, err := rt.analyzer.ActivityByHour(r.Context(), window)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, activity, started)
}

// handleSubmoltActivity serves GET /api/v1/activity/submolts, the most
// active communities over the window.
func (rt *Router) handleSubmoltActivity(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultStatsWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	limit, err := getIntParam(r, "limit", 20)
	if err != nil || limit < 1 || limit > rt.cfg.API.MaxPageSize {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100", nil)
		return
	}

	activity, err := rt.analyzer.SubmoltActivity(r.Context(), window, limit)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, activity, started)
}

// handleSentiment serves GET /api/v1/sentiment, the lexicon-scored
// community mood over the window.
func (rt *Router) handleSentiment(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultStatsWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	sentiment, err := rt.analyzer.CommunitySentiment(r.Context(), window)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, sentiment, started)
}

// handleTrends serves GET /api/v1/trends, words rising against the
// previous equal period.
func (rt *Router) handleTrends(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultStatsWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	trends, err := rt.analyzer.TrendingWords(r.Context(), window)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, trends, started)
}

// handleTopWords serves GET /api/v1/trends/top, the most frequent words
// over the window regardless of momentum.
func (rt *Router) handleTopWords(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultStatsWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	limit, err := getIntParam(r, "limit", rt.cfg.Analytics.TrendTopWords)
	if err != nil || limit < 1 || limit > rt.cfg.API.MaxPageSize {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100", nil)
		return
	}

	words, err := rt.analyzer.TopWords(r.Context(), window, limit)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, words, started)
}

// handleWordHistory serves GET /api/v1/trends/{word}/history, the
// hourly frequency series for one word.
func (rt *Router) handleWordHistory(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	word := chi.URLParam(r, "word")
	if word == "" || len(word) > 100 {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "word must be 1 to 100 characters", nil)
		return
	}

	window, err := getWindowParam(r, "window", defaultHistoryWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	history, err := rt.analyzer.WordHistory(r.Context(), word, window)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, history, started)
}

// handleSnapshots serves GET /api/v1/snapshots, the hourly platform
// state series used for the dashboard's long-range charts.
func (rt *Router) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	window, err := getWindowParam(r, "window", defaultHistoryWindow)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	snapshots, err := rt.analyzer.SnapshotHistory(r.Context(), window)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, snapshots, started)
}
