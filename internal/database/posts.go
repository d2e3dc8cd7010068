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

// UpsertPost stores a post fetched from the Moltbook API. For posts already
// in the database only the mutable fields are refreshed (score, comment
// count, pinned flag). New posts get their author and submolt ensured first
// so the flattened references stay resolvable.
//
// Returns true when a new row was inserted.
func (db *DB) UpsertPost(ctx context.Context, post *models.Post, fetchedAt time.Time) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()

	var existingID string
	err := db.conn.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = ?`, post.ID).Scan(&existingID)
	switch {
	case err == nil:
		_, err = db.conn.ExecContext(ctx, `
			UPDATE posts SET
				score = ?,
				comment_count = ?,
				is_pinned = ?,
				fetched_at = ?
			WHERE id = ?`,
			post.Score(), post.CommentCount, post.IsPinned, fetchedAt, post.ID)
		metrics.RecordDBQuery("update", "posts", time.Since(start), err)
		if err != nil {
			return false, fmt.Errorf("failed to update post %s: %w", post.ID, err)
		}
		return false, nil

	case err == sql.ErrNoRows:
		if post.Submolt != nil && post.Submolt.Name != "" {
			if err := db.EnsureSubmolt(ctx, post.Submolt.Name, post.Submolt); err != nil {
				return false, err
			}
		}
		if post.AuthorName() != "" {
			if err := db.EnsureAgent(ctx, post.AuthorName(), post.Author.ID); err != nil {
				return false, err
			}
		}

		var agentID interface{}
		if post.Author != nil && post.Author.ID != "" {
			agentID = post.Author.ID
		}

		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO posts (id, agent_id, agent_name, submolt, title, content, url, score, comment_count, is_pinned, created_at, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			post.ID, agentID, post.AuthorName(), post.SubmoltName(),
			post.Title, post.Content, nullIfEmpty(post.URL),
			post.Score(), post.CommentCount, false,
			post.CreatedAt, fetchedAt)
		metrics.RecordDBQuery("insert", "posts", time.Since(start), err)
		if err != nil {
			return false, fmt.Errorf("failed to insert post %s: %w", post.ID, err)
		}
		return true, nil

	default:
		metrics.RecordDBQuery("select", "posts", time.Since(start), err)
		return false, fmt.Errorf("failed to check post %s: %w", post.ID, err)
	}
}

// PostQuery holds filter and pagination options for ListPosts.
//
// Sort accepts "new" (creation time descending, the default) and "top"
// (score descending).
type PostQuery struct {
	Submolt string
	Agent   string
	Sort    string
	Limit   int
	Offset  int
}

// ListPosts returns posts matching the query, newest or highest scored
// first.
func (db *DB) ListPosts(ctx context.Context, q PostQuery) ([]models.PostRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if q.Limit <= 0 {
		q.Limit = 20
	}

	where := " WHERE 1=1"
	args := []interface{}{}
	if q.Submolt != "" {
		where += " AND submolt = ?"
		args = append(args, q.Submolt)
	}
	if q.Agent != "" {
		where += " AND agent_name = ?"
		args = append(args, q.Agent)
	}

	orderBy := " ORDER BY created_at DESC"
	if q.Sort == "top" {
		orderBy = " ORDER BY score DESC"
	}

	query := `SELECT id, agent_id, agent_name, submolt, title, content, url, score, comment_count, is_pinned, created_at, fetched_at FROM posts` +
		where + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer closeWithLog(rows, "posts rows")

	return scanPostRecords(rows)
}

// GetPost returns a single post by ID, or sql.ErrNoRows when absent.
func (db *DB) GetPost(ctx context.Context, id string) (*models.PostRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, agent_id, agent_name, submolt, title, content, url, score, comment_count, is_pinned, created_at, fetched_at
		FROM posts WHERE id = ?`, id)

	rec, err := scanPostRecord(row)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	return rec, nil
}

// TopPostIDs returns the IDs of the highest scored posts created since the
// cutoff. The comment poller uses this to decide which comment trees to
// refresh.
func (db *DB) TopPostIDs(ctx context.Context, since time.Time, limit int) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id FROM posts
		WHERE created_at >= ?
		ORDER BY score DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query top post IDs: %w", err)
	}
	defer closeWithLog(rows, "post id rows")

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecentPostTexts returns the concatenated title and content of posts
// created after the cutoff, newest first, capped at limit. The sentiment
// analyzer samples from this.
func (db *DB) RecentPostTexts(ctx context.Context, since time.Time, limit int) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT title, content FROM posts
		WHERE created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent post texts: %w", err)
	}
	defer closeWithLog(rows, "post text rows")

	var texts []string
	for rows.Next() {
		var title, content sql.NullString
		if err := rows.Scan(&title, &content); err != nil {
			return nil, fmt.Errorf("failed to scan post text: %w", err)
		}
		text := title.String
		if content.String != "" {
			text += " " + content.String
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// PostTextsFetchedSince returns the texts of posts fetched after the
// cutoff. Word frequency extraction keys off fetch time so every collected
// post is counted exactly once per poll window regardless of its age.
func (db *DB) PostTextsFetchedSince(ctx context.Context, since time.Time) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT title, content FROM posts
		WHERE fetched_at >= ?
		ORDER BY fetched_at DESC`, since)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query post texts: %w", err)
	}
	defer closeWithLog(rows, "post text rows")

	var texts []string
	for rows.Next() {
		var title, content sql.NullString
		if err := rows.Scan(&title, &content); err != nil {
			return nil, fmt.Errorf("failed to scan post text: %w", err)
		}
		text := title.String
		if content.String != "" {
			text += " " + content.String
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPostRecord(s scanner) (*models.PostRecord, error) {
	var rec models.PostRecord
	var agentID, content, url, submolt sql.NullString
	var createdAt sql.NullTime
	if err := s.Scan(&rec.ID, &agentID, &rec.AgentName, &submolt, &rec.Title, &content, &url,
		&rec.Score, &rec.CommentCount, &rec.IsPinned, &createdAt, &rec.FetchedAt); err != nil {
		return nil, err
	}
	rec.AgentID = agentID.String
	rec.Submolt = submolt.String
	rec.Content = content.String
	rec.URL = url.String
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}

func scanPostRecords(rows *sql.Rows) ([]models.PostRecord, error) {
	var records []models.PostRecord
	for rows.Next() {
		rec, err := scanPostRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// nullIfEmpty maps empty strings to SQL NULL for optional text columns.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
