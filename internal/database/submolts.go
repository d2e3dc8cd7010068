// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// EnsureSubmolt guarantees a submolt row exists and refreshes it with the
// latest metadata when provided. COALESCE keeps previously observed counts
// when a payload omits them (post embeds often carry partial submolt
// objects).
func (db *DB) EnsureSubmolt(ctx context.Context, name string, data *models.Submolt) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	now := time.Now().UTC()

	var existing string
	err := db.conn.QueryRowContext(ctx, `SELECT name FROM submolts WHERE name = ?`, name).Scan(&existing)
	switch {
	case err == nil:
		if data == nil {
			return nil
		}
		_, err = db.conn.ExecContext(ctx, `
			UPDATE submolts SET
				display_name = ?,
				description = ?,
				subscriber_count = COALESCE(?, subscriber_count),
				post_count = COALESCE(?, post_count),
				avatar_url = COALESCE(?, avatar_url),
				banner_url = COALESCE(?, banner_url)
			WHERE name = ?`,
			defaultIfEmpty(data.DisplayName, name), data.Description,
			nullIfZero(data.SubscriberCount), nullIfZero(data.PostCount),
			nullIfEmpty(data.AvatarURL), nullIfEmpty(data.BannerURL), name)
		metrics.RecordDBQuery("update", "submolts", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to update submolt %s: %w", name, err)
		}
		return nil

	case err == sql.ErrNoRows:
		displayName := name
		description := ""
		subscriberCount := 0
		createdAt := now
		var avatarURL, bannerURL interface{}
		if data != nil {
			displayName = defaultIfEmpty(data.DisplayName, name)
			description = data.Description
			subscriberCount = data.SubscriberCount
			if !data.CreatedAt.IsZero() {
				createdAt = data.CreatedAt
			}
			avatarURL = nullIfEmpty(data.AvatarURL)
			bannerURL = nullIfEmpty(data.BannerURL)
		}
		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO submolts (name, display_name, description, subscriber_count, post_count, avatar_url, banner_url, created_at, first_seen_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, displayName, description, subscriberCount, 0,
			avatarURL, bannerURL, createdAt, now)
		metrics.RecordDBQuery("insert", "submolts", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to insert submolt %s: %w", name, err)
		}
		return nil

	default:
		metrics.RecordDBQuery("select", "submolts", time.Since(start), err)
		return fmt.Errorf("failed to check submolt %s: %w", name, err)
	}
}

// GetSubmolt returns a single submolt by name, or sql.ErrNoRows when absent.
func (db *DB) GetSubmolt(ctx context.Context, name string) (*models.SubmoltRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT name, display_name, description, subscriber_count, post_count, avatar_url, banner_url, created_at, first_seen_at
		FROM submolts WHERE name = ?`, name)

	rec, err := scanSubmoltRecord(row)
	metrics.RecordDBQuery("select", "submolts", time.Since(start), err)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get submolt %s: %w", name, err)
	}
	return rec, nil
}

// ListSubmolts returns submolts ordered by subscriber count descending.
func (db *DB) ListSubmolts(ctx context.Context, limit, offset int) ([]models.SubmoltRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, display_name, description, subscriber_count, post_count, avatar_url, banner_url, created_at, first_seen_at
		FROM submolts
		ORDER BY subscriber_count DESC
		LIMIT ? OFFSET ?`, limit, offset)
	metrics.RecordDBQuery("select", "submolts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query submolts: %w", err)
	}
	defer closeWithLog(rows, "submolt rows")

	var records []models.SubmoltRecord
	for rows.Next() {
		rec, err := scanSubmoltRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submolt row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanSubmoltRecord(s scanner) (*models.SubmoltRecord, error) {
	var rec models.SubmoltRecord
	var displayName, description, avatarURL, bannerURL sql.NullString
	var createdAt sql.NullTime
	if err := s.Scan(&rec.Name, &displayName, &description, &rec.SubscriberCount,
		&rec.PostCount, &avatarURL, &bannerURL, &createdAt, &rec.FirstSeenAt); err != nil {
		return nil, err
	}
	rec.DisplayName = displayName.String
	rec.Description = description.String
	rec.AvatarURL = avatarURL.String
	rec.BannerURL = bannerURL.String
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}

// defaultIfEmpty returns fallback when s is empty.
func defaultIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// nullIfZero maps zero counts to SQL NULL so COALESCE keeps the stored
// value. Partial submolt embeds omit counts, which decode as zero.
func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
