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

// InsertCommentTree flattens a comment tree from the Moltbook API and stores
// every node not already present. ParentID is derived from tree position;
// top-level comments get a NULL parent. Existing comments are left untouched
// since comment edits are not tracked.
//
// Returns the number of new comments inserted.
func (db *DB) InsertCommentTree(ctx context.Context, postID string, comments []models.Comment, fetchedAt time.Time) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	inserted := 0
	var walk func(comment *models.Comment, parentID string) error
	walk = func(comment *models.Comment, parentID string) error {
		if comment.ID != "" {
			ok, err := db.insertComment(ctx, postID, parentID, comment, fetchedAt)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		for i := range comment.Replies {
			if err := walk(&comment.Replies[i], comment.ID); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range comments {
		if err := walk(&comments[i], ""); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (db *DB) insertComment(ctx context.Context, postID, parentID string, comment *models.Comment, fetchedAt time.Time) (bool, error) {
	start := time.Now()

	var existingID string
	err := db.conn.QueryRowContext(ctx, `SELECT id FROM comments WHERE id = ?`, comment.ID).Scan(&existingID)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		metrics.RecordDBQuery("select", "comments", time.Since(start), err)
		return false, fmt.Errorf("failed to check comment %s: %w", comment.ID, err)
	}

	if comment.AuthorName() != "" {
		if err := db.EnsureAgent(ctx, comment.AuthorName(), comment.Author.ID); err != nil {
			return false, err
		}
	}

	var agentID interface{}
	if comment.Author != nil && comment.Author.ID != "" {
		agentID = comment.Author.ID
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, agent_id, agent_name, parent_id, content, score, created_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		comment.ID, postID, agentID, comment.AuthorName(), nullIfEmpty(parentID),
		comment.Content, comment.Score(), comment.CreatedAt, fetchedAt)
	metrics.RecordDBQuery("insert", "comments", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to insert comment %s: %w", comment.ID, err)
	}
	return true, nil
}

// PostComments returns the stored comments for a post in creation order.
// The tree can be rebuilt client-side from ParentID.
func (db *DB) PostComments(ctx context.Context, postID string, limit int) ([]models.CommentRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 200
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, post_id, agent_id, agent_name, parent_id, content, score, created_at, fetched_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at ASC
		LIMIT ?`, postID, limit)
	metrics.RecordDBQuery("select", "comments", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for post %s: %w", postID, err)
	}
	defer closeWithLog(rows, "comment rows")

	var records []models.CommentRecord
	for rows.Next() {
		var rec models.CommentRecord
		var agentID, parentID, content sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.PostID, &agentID, &rec.AgentName, &parentID,
			&content, &rec.Score, &createdAt, &rec.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		rec.AgentID = agentID.String
		rec.ParentID = parentID.String
		rec.Content = content.String
		rec.CreatedAt = createdAt.Time
		records = append(records, rec)
	}
	return records, rows.Err()
}
