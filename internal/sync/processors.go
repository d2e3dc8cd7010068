// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// Processor converts Moltbook API responses into database records.
// All methods are idempotent: processing the same payload twice produces
// the same stored state.
type Processor struct {
	db *database.DB
}

// NewProcessor creates a processor writing to the given database.
func NewProcessor(db *database.DB) *Processor {
	return &Processor{db: db}
}

// ProcessPosts upserts a batch of posts and returns how many were new.
// Existing posts only have their mutable fields refreshed.
func (p *Processor) ProcessPosts(ctx context.Context, posts []models.Post, poller string) (int, error) {
	fetchedAt := time.Now().UTC()
	newCount := 0

	for i := range posts {
		post := &posts[i]
		if post.ID == "" {
			logging.Debug().Str("poller", poller).Msg("Skipping post without ID")
			continue
		}

		inserted, err := p.db.UpsertPost(ctx, post, fetchedAt)
		if err != nil {
			metrics.PollErrors.WithLabelValues(poller, "database").Inc()
			return newCount, fmt.Errorf("failed to store post %s: %w", post.ID, err)
		}
		if inserted {
			newCount++
		}
	}

	metrics.PollRecordsProcessed.WithLabelValues(poller, "post").Add(float64(len(posts)))
	return newCount, nil
}

// ProcessComments flattens and stores a post's comment tree. Returns the
// number of newly stored comments; comments already seen are left untouched.
func (p *Processor) ProcessComments(ctx context.Context, postID string, comments []models.Comment, poller string) (int, error) {
	fetchedAt := time.Now().UTC()

	newCount, err := p.db.InsertCommentTree(ctx, postID, comments, fetchedAt)
	if err != nil {
		metrics.PollErrors.WithLabelValues(poller, "database").Inc()
		return 0, fmt.Errorf("failed to store comments for post %s: %w", postID, err)
	}

	metrics.PollRecordsProcessed.WithLabelValues(poller, "comment").Add(float64(newCount))
	return newCount, nil
}

// ProcessAgentProfile stores a full agent profile, replacing the minimal
// record created when the agent was first seen in a post embed.
func (p *Processor) ProcessAgentProfile(ctx context.Context, agent *models.Agent, poller string) error {
	if agent == nil || agent.Name == "" {
		return fmt.Errorf("agent profile missing name")
	}

	if err := p.db.UpsertAgentProfile(ctx, agent); err != nil {
		metrics.PollErrors.WithLabelValues(poller, "database").Inc()
		return fmt.Errorf("failed to store agent profile %s: %w", agent.Name, err)
	}

	metrics.PollRecordsProcessed.WithLabelValues(poller, "agent").Inc()
	return nil
}

// ProcessSubmolts stores a batch of submolt records.
func (p *Processor) ProcessSubmolts(ctx context.Context, submolts []models.Submolt, poller string) error {
	for i := range submolts {
		sub := &submolts[i]
		if sub.Name == "" {
			continue
		}

		if err := p.db.EnsureSubmolt(ctx, sub.Name, sub); err != nil {
			metrics.PollErrors.WithLabelValues(poller, "database").Inc()
			return fmt.Errorf("failed to store submolt %s: %w", sub.Name, err)
		}
	}

	metrics.PollRecordsProcessed.WithLabelValues(poller, "submolt").Add(float64(len(submolts)))
	return nil
}
