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

// EnsureAgent guarantees an agent row exists before posts or comments
// reference it. Compact author objects embedded in posts only carry an ID
// and name, so new rows start minimal and get filled in by the profile
// poller later. Existing rows just get their last sighting refreshed.
func (db *DB) EnsureAgent(ctx context.Context, name, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	now := time.Now().UTC()

	var existing string
	err := db.conn.QueryRowContext(ctx, `SELECT name FROM agents WHERE name = ?`, name).Scan(&existing)
	switch {
	case err == nil:
		_, err = db.conn.ExecContext(ctx, `UPDATE agents SET last_seen_at = ? WHERE name = ?`, now, name)
		metrics.RecordDBQuery("update", "agents", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to touch agent %s: %w", name, err)
		}
		return nil

	case err == sql.ErrNoRows:
		if id == "" {
			id = name
		}
		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO agents (id, name, first_seen_at, last_seen_at)
			VALUES (?, ?, ?, ?)`, id, name, now, now)
		metrics.RecordDBQuery("insert", "agents", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to insert agent %s: %w", name, err)
		}
		return nil

	default:
		metrics.RecordDBQuery("select", "agents", time.Since(start), err)
		return fmt.Errorf("failed to check agent %s: %w", name, err)
	}
}

// UpsertAgentProfile stores a full agent profile fetched from the Moltbook
// API, refreshing all mutable fields on existing rows.
func (db *DB) UpsertAgentProfile(ctx context.Context, agent *models.Agent) error {
	if agent.Name == "" {
		return fmt.Errorf("agent profile has no name")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	now := time.Now().UTC()

	var ownerHandle interface{}
	if agent.Owner != nil && agent.Owner.XHandle != "" {
		ownerHandle = agent.Owner.XHandle
	}

	var existing string
	err := db.conn.QueryRowContext(ctx, `SELECT name FROM agents WHERE name = ?`, agent.Name).Scan(&existing)
	switch {
	case err == nil:
		_, err = db.conn.ExecContext(ctx, `
			UPDATE agents SET
				description = ?,
				karma = ?,
				follower_count = ?,
				following_count = ?,
				is_claimed = ?,
				owner_x_handle = ?,
				avatar_url = ?,
				created_at = ?,
				last_seen_at = ?
			WHERE name = ?`,
			agent.Description, agent.Karma, agent.FollowerCount, agent.FollowingCount,
			agent.IsClaimed, ownerHandle, nullIfEmpty(agent.AvatarURL), agent.CreatedAt,
			now, agent.Name)
		metrics.RecordDBQuery("update", "agents", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to update agent %s: %w", agent.Name, err)
		}
		return nil

	case err == sql.ErrNoRows:
		id := agent.ID
		if id == "" {
			id = agent.Name
		}
		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO agents (id, name, description, karma, follower_count, following_count, is_claimed, owner_x_handle, avatar_url, created_at, first_seen_at, last_seen_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, agent.Name, agent.Description, agent.Karma, agent.FollowerCount, agent.FollowingCount,
			agent.IsClaimed, ownerHandle, nullIfEmpty(agent.AvatarURL), agent.CreatedAt, now, now)
		metrics.RecordDBQuery("insert", "agents", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to insert agent %s: %w", agent.Name, err)
		}
		return nil

	default:
		metrics.RecordDBQuery("select", "agents", time.Since(start), err)
		return fmt.Errorf("failed to check agent %s: %w", agent.Name, err)
	}
}

// GetAgent returns a single agent by name, or sql.ErrNoRows when absent.
func (db *DB) GetAgent(ctx context.Context, name string) (*models.AgentRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, karma, follower_count, following_count, is_claimed, owner_x_handle, avatar_url, created_at, first_seen_at, last_seen_at
		FROM agents WHERE name = ?`, name)

	rec, err := scanAgentRecord(row)
	metrics.RecordDBQuery("select", "agents", time.Since(start), err)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get agent %s: %w", name, err)
	}
	return rec, nil
}

// ListAgents returns agents ordered by karma descending.
func (db *DB) ListAgents(ctx context.Context, limit, offset int) ([]models.AgentRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, karma, follower_count, following_count, is_claimed, owner_x_handle, avatar_url, created_at, first_seen_at, last_seen_at
		FROM agents
		ORDER BY karma DESC
		LIMIT ? OFFSET ?`, limit, offset)
	metrics.RecordDBQuery("select", "agents", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer closeWithLog(rows, "agent rows")

	return scanAgentRecords(rows)
}

// NewAgentsSince returns agents first seen after the cutoff, newest first.
func (db *DB) NewAgentsSince(ctx context.Context, since time.Time, limit int) ([]models.AgentRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, karma, follower_count, following_count, is_claimed, owner_x_handle, avatar_url, created_at, first_seen_at, last_seen_at
		FROM agents
		WHERE first_seen_at >= ?
		ORDER BY first_seen_at DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "agents", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query new agents: %w", err)
	}
	defer closeWithLog(rows, "agent rows")

	return scanAgentRecords(rows)
}

// ActiveAgentNames returns the distinct names of agents that posted since
// the cutoff. The profile poller refreshes these agents first.
func (db *DB) ActiveAgentNames(ctx context.Context, since time.Time, limit int) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT agent_name FROM posts
		WHERE created_at >= ? AND agent_name != ''
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query active agent names: %w", err)
	}
	defer closeWithLog(rows, "agent name rows")

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan agent name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanAgentRecord(s scanner) (*models.AgentRecord, error) {
	var rec models.AgentRecord
	var id, description, ownerHandle, avatarURL sql.NullString
	var createdAt sql.NullTime
	if err := s.Scan(&id, &rec.Name, &description, &rec.Karma, &rec.FollowerCount,
		&rec.FollowingCount, &rec.IsClaimed, &ownerHandle, &avatarURL,
		&createdAt, &rec.FirstSeenAt, &rec.LastSeenAt); err != nil {
		return nil, err
	}
	rec.ID = id.String
	rec.Description = description.String
	rec.OwnerXHandle = ownerHandle.String
	rec.AvatarURL = avatarURL.String
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}

func scanAgentRecords(rows *sql.Rows) ([]models.AgentRecord, error) {
	var records []models.AgentRecord
	for rows.Next() {
		rec, err := scanAgentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
