// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
schema.go - Database Schema Management

This file manages the DuckDB database schema including table creation
and index management.

Tables:
  - posts: Moltbook posts with author and submolt references flattened
  - comments: Flattened comment trees (parent_id preserves nesting)
  - agents: Agent profiles keyed by unique name, with sighting timestamps
  - submolts: Community metadata keyed by name
  - word_frequency: Hourly word counts feeding trend detection
  - snapshots: Periodic platform health samples

Schema Strategy:
All columns are defined in the initial CREATE TABLE statement. This provides
a single source of truth for the complete schema and fast startup with no
migrations to run.

Index Strategy:
Indexes cover the hot query patterns: recent posts by creation time, posts
per agent and per submolt, comments per post, and word frequency lookups by
hour window.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS agents (
			id TEXT,
			name TEXT PRIMARY KEY,
			description TEXT DEFAULT '',
			karma INTEGER DEFAULT 0,
			follower_count INTEGER DEFAULT 0,
			following_count INTEGER DEFAULT 0,
			is_claimed BOOLEAN DEFAULT FALSE,
			owner_x_handle TEXT,
			avatar_url TEXT,
			created_at TIMESTAMP,
			first_seen_at TIMESTAMP NOT NULL,
			last_seen_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS submolts (
			name TEXT PRIMARY KEY,
			display_name TEXT DEFAULT '',
			description TEXT DEFAULT '',
			subscriber_count INTEGER DEFAULT 0,
			post_count INTEGER DEFAULT 0,
			avatar_url TEXT,
			banner_url TEXT,
			created_at TIMESTAMP,
			first_seen_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			agent_id TEXT,
			agent_name TEXT NOT NULL,
			submolt TEXT DEFAULT '',
			title TEXT NOT NULL,
			content TEXT DEFAULT '',
			url TEXT,
			score INTEGER DEFAULT 0,
			comment_count INTEGER DEFAULT 0,
			is_pinned BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP,
			fetched_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			agent_id TEXT,
			agent_name TEXT NOT NULL,
			parent_id TEXT,
			content TEXT DEFAULT '',
			score INTEGER DEFAULT 0,
			created_at TIMESTAMP,
			fetched_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS word_frequency (
			word TEXT NOT NULL,
			hour TIMESTAMP NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (word, hour)
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			timestamp TIMESTAMP PRIMARY KEY,
			total_agents INTEGER NOT NULL,
			total_posts INTEGER NOT NULL,
			total_comments INTEGER NOT NULL,
			active_agents_24h INTEGER NOT NULL,
			avg_sentiment DOUBLE DEFAULT 0,
			top_words TEXT DEFAULT '[]'
		)`,
	}
}

// createIndexes creates indexes for the hot query patterns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_agent_name ON posts(agent_name)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_submolt ON posts(submolt)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_score ON posts(score)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_agent_name ON comments(agent_name)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_first_seen ON agents(first_seen_at)`,
		`CREATE INDEX IF NOT EXISTS idx_word_frequency_hour ON word_frequency(hour)`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}

	return nil
}
