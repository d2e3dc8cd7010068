// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// trendNewWordCap is the change percentage assigned to words with no
// occurrences in the previous window. Keeps sort order finite.
const trendNewWordCap = 999

// UpdateWordFrequency merges extracted word counts into the hourly frequency
// table. Counts accumulate when the same hour is processed more than once.
func (db *DB) UpdateWordFrequency(ctx context.Context, hour time.Time, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	hour = hour.UTC().Truncate(time.Hour)

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin word frequency transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO word_frequency (word, hour, count)
		VALUES (?, ?, ?)
		ON CONFLICT (word, hour) DO UPDATE SET count = count + EXCLUDED.count`)
	if err != nil {
		return fmt.Errorf("failed to prepare word frequency upsert: %w", err)
	}
	defer closeWithLog(stmt, "word frequency statement")

	for word, count := range counts {
		if _, err := stmt.ExecContext(ctx, word, hour, count); err != nil {
			metrics.RecordDBQuery("upsert", "word_frequency", time.Since(start), err)
			return fmt.Errorf("failed to upsert word %q: %w", word, err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("upsert", "word_frequency", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to commit word frequency upsert: %w", err)
	}

	metrics.TrendWordsExtracted.Add(float64(len(counts)))
	return nil
}

// TrendingWords compares word frequency in the current window against the
// equal-length preceding window and returns words whose usage grew fastest.
//
// Words below minCount in the current window are skipped. Words absent from
// the previous window get the capped change percentage when they cleared a
// minimal floor, zero otherwise.
func (db *DB) TrendingWords(ctx context.Context, window time.Duration, minCount, limit int) ([]models.TrendingWord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	if minCount <= 0 {
		minCount = 3
	}

	now := time.Now().UTC()
	currentStart := now.Add(-window)
	previousStart := now.Add(-2 * window)

	current, err := db.wordTotals(ctx, currentStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := db.wordTotals(ctx, previousStart, currentStart)
	if err != nil {
		return nil, err
	}

	var trending []models.TrendingWord
	for word, count := range current {
		if count < minCount {
			continue
		}
		prev := previous[word]
		var change float64
		switch {
		case prev > 0:
			change = float64(count-prev) / float64(prev) * 100
		case count > 2:
			change = trendNewWordCap
		default:
			change = 0
		}
		trending = append(trending, models.TrendingWord{
			Word:          word,
			Count:         count,
			PreviousCount: prev,
			ChangePercent: change,
		})
	}

	sort.Slice(trending, func(i, j int) bool {
		if trending[i].ChangePercent != trending[j].ChangePercent {
			return trending[i].ChangePercent > trending[j].ChangePercent
		}
		return trending[i].Count > trending[j].Count
	})

	if len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}

// wordTotals sums word frequency over [from, to).
func (db *DB) wordTotals(ctx context.Context, from, to time.Time) (map[string]int, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT word, SUM(count) AS total
		FROM word_frequency
		WHERE hour >= ? AND hour < ?
		GROUP BY word`, from, to)
	metrics.RecordDBQuery("select", "word_frequency", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query word totals: %w", err)
	}
	defer closeWithLog(rows, "word total rows")

	totals := make(map[string]int)
	for rows.Next() {
		var word string
		var total int
		if err := rows.Scan(&word, &total); err != nil {
			return nil, fmt.Errorf("failed to scan word total: %w", err)
		}
		totals[word] = total
	}
	return totals, rows.Err()
}

// TopWords returns the most frequent words within the window.
func (db *DB) TopWords(ctx context.Context, window time.Duration, limit int) ([]models.WordCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	since := time.Now().UTC().Add(-window)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT word, SUM(count) AS total
		FROM word_frequency
		WHERE hour >= ?
		GROUP BY word
		ORDER BY total DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "word_frequency", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query top words: %w", err)
	}
	defer closeWithLog(rows, "top word rows")

	var words []models.WordCount
	for rows.Next() {
		var w models.WordCount
		if err := rows.Scan(&w.Word, &w.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// WordHistory returns the hourly frequency series for a single word within
// the window, oldest first.
func (db *DB) WordHistory(ctx context.Context, word string, window time.Duration) ([]models.WordHistoryPoint, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	since := time.Now().UTC().Add(-window)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT hour, count
		FROM word_frequency
		WHERE word = ? AND hour >= ?
		ORDER BY hour ASC`, word, since)
	metrics.RecordDBQuery("select", "word_frequency", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query word history for %q: %w", word, err)
	}
	defer closeWithLog(rows, "word history rows")

	var points []models.WordHistoryPoint
	for rows.Next() {
		var p models.WordHistoryPoint
		if err := rows.Scan(&p.Hour, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan word history point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
