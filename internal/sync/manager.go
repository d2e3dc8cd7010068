// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
manager.go - Poll Orchestration

The Manager owns the observatory's background pollers. Each poller runs on
its own ticker with its own interval from PollConfig:

  - posts: newest posts across the platform
  - comments: comment trees for recently active posts
  - agents: full profiles for recently active agents
  - submolts: the community directory
  - snapshot: hourly word frequency extraction and activity snapshot

Every poller fires once shortly after startup so a fresh deployment has
data before the first interval elapses. All pollers share the Moltbook
client, so the key pool naturally arbitrates between them.
*/

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moltwatch/internal/analyzer"
	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/metrics"
)

// commentPostWindow bounds how far back the comment poller looks for posts
// worth refreshing.
const commentPostWindow = 24 * time.Hour

// agentProfileBatch is how many agent profiles get refreshed per agent poll.
const agentProfileBatch = 25

// submoltPageSize is the page size for submolt directory pagination.
const submoltPageSize = 100

// WebSocketHub interface for broadcasting messages to dashboard clients
// Implemented by internal/websocket/Hub
type WebSocketHub interface {
	BroadcastJSON(messageType string, data interface{})
}

// Manager orchestrates the observatory's Moltbook pollers.
type Manager struct {
	client    MoltbookClientInterface
	processor *Processor
	db        *database.DB
	analyzer  *analyzer.Analyzer
	cfg       *config.Config
	wsHub     WebSocketHub // Optional, may be nil
	logger    zerolog.Logger

	lastPoll time.Time
	running  bool
	mu       sync.RWMutex
	pollMu   sync.Mutex // Serializes manual and scheduled post polls
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates a poll manager. wsHub may be nil; broadcasts are then
// skipped.
func NewManager(client MoltbookClientInterface, db *database.DB, an *analyzer.Analyzer, cfg *config.Config, wsHub WebSocketHub) *Manager {
	return &Manager{
		client:    client,
		processor: NewProcessor(db),
		db:        db,
		analyzer:  an,
		cfg:       cfg,
		wsHub:     wsHub,
		logger:    logging.WithComponent("poller"),
		stopChan:  make(chan struct{}),
	}
}

// Start launches all pollers. Returns an error if already running.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("poll manager is already running")
	}
	m.running = true
	m.mu.Unlock()

	m.logger.Info().
		Dur("posts_interval", m.cfg.Poll.PostsInterval).
		Dur("comments_interval", m.cfg.Poll.CommentsInterval).
		Dur("agents_interval", m.cfg.Poll.AgentsInterval).
		Dur("submolts_interval", m.cfg.Poll.SubmoltsInterval).
		Dur("snapshot_interval", m.cfg.Poll.SnapshotInterval).
		Msg("Starting poll manager")

	// Add all goroutines to WaitGroup before starting them so Stop()
	// cannot observe a partial set.
	m.wg.Add(5)
	go m.runPoller(ctx, "posts", m.cfg.Poll.PostsInterval, m.pollPosts)
	go m.runPoller(ctx, "comments", m.cfg.Poll.CommentsInterval, m.pollComments)
	go m.runPoller(ctx, "agents", m.cfg.Poll.AgentsInterval, m.pollAgents)
	go m.runPoller(ctx, "submolts", m.cfg.Poll.SubmoltsInterval, m.pollSubmolts)
	go m.runPoller(ctx, "snapshot", m.cfg.Poll.SnapshotInterval, m.pollSnapshot)

	return nil
}

// Stop gracefully stops all pollers and waits for in-flight polls.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("poll manager is not running")
	}
	m.running = false
	m.mu.Unlock()

	m.logger.Info().Msg("Stopping poll manager...")
	close(m.stopChan)
	m.wg.Wait()
	m.logger.Info().Msg("Poll manager stopped")

	return nil
}

// LastPollTime returns the timestamp of the last successful post poll.
func (m *Manager) LastPollTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastPoll
}

// TriggerPostPoll manually runs one post poll cycle. Used by the dashboard
// refresh endpoint.
func (m *Manager) TriggerPostPoll(ctx context.Context) error {
	return m.pollPosts(ctx)
}

// runPoller runs fn once immediately, then on every tick until shutdown.
func (m *Manager) runPoller(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	defer m.wg.Done()

	run := func() {
		start := time.Now()
		err := fn(ctx)
		metrics.RecordPoll(name, time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error().Err(err).Str("poller", name).Msg("Poll cycle failed")
		}
	}

	// Initial run so a fresh deployment has data before the first tick.
	// The key pool arbitrates when several pollers start at once.
	if ctx.Err() != nil {
		return
	}
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run()
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// pollPosts fetches the newest posts and stores them.
func (m *Manager) pollPosts(ctx context.Context) error {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	resp, err := m.client.GetPosts(ctx, "new", m.cfg.Poll.PostsPageSize, "")
	if err != nil {
		metrics.PollErrors.WithLabelValues("posts", "moltbook_api").Inc()
		return fmt.Errorf("post poll fetch failed: %w", err)
	}

	newCount, err := m.processor.ProcessPosts(ctx, resp.Posts, "posts")
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.lastPoll = time.Now()
	m.mu.Unlock()

	m.logger.Info().Int("fetched", len(resp.Posts)).Int("new", newCount).Msg("Post poll completed")

	if newCount > 0 {
		m.analyzer.InvalidateAll()
		m.broadcast("posts_update", map[string]interface{}{
			"new_posts": newCount,
			"timestamp": time.Now().UTC(),
		})
	}

	return nil
}

// pollComments refreshes comment trees for the highest scoring recent posts.
// A single failing post does not abort the cycle.
func (m *Manager) pollComments(ctx context.Context) error {
	postIDs, err := m.db.TopPostIDs(ctx, time.Now().Add(-commentPostWindow), m.cfg.Poll.CommentsTopPosts)
	if err != nil {
		metrics.PollErrors.WithLabelValues("comments", "database").Inc()
		return fmt.Errorf("comment poll post selection failed: %w", err)
	}

	var firstErr error
	totalNew := 0
	for _, postID := range postIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, err := m.client.GetPostComments(ctx, postID, "top")
		if err != nil {
			metrics.PollErrors.WithLabelValues("comments", "moltbook_api").Inc()
			m.logger.Warn().Err(err).Str("post_id", postID).Msg("Comment fetch failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		newCount, err := m.processor.ProcessComments(ctx, postID, resp.Comments, "comments")
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		totalNew += newCount
	}

	m.logger.Info().Int("posts", len(postIDs)).Int("new_comments", totalNew).Msg("Comment poll completed")

	if totalNew > 0 {
		m.analyzer.InvalidateAll()
	}
	return firstErr
}

// pollAgents refreshes full profiles for agents that posted recently.
func (m *Manager) pollAgents(ctx context.Context) error {
	names, err := m.db.ActiveAgentNames(ctx, time.Now().Add(-commentPostWindow), agentProfileBatch)
	if err != nil {
		metrics.PollErrors.WithLabelValues("agents", "database").Inc()
		return fmt.Errorf("agent poll selection failed: %w", err)
	}

	var firstErr error
	refreshed := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		agent, err := m.client.GetAgentProfile(ctx, name)
		if err != nil {
			metrics.PollErrors.WithLabelValues("agents", "moltbook_api").Inc()
			m.logger.Warn().Err(err).Str("agent", name).Msg("Agent profile fetch failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := m.processor.ProcessAgentProfile(ctx, agent, "agents"); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		refreshed++
	}

	m.logger.Info().Int("refreshed", refreshed).Msg("Agent poll completed")
	return firstErr
}

// pollSubmolts walks the full submolt directory with offset pagination.
func (m *Manager) pollSubmolts(ctx context.Context) error {
	total := 0
	for offset := 0; ; offset += submoltPageSize {
		resp, err := m.client.GetSubmolts(ctx, submoltPageSize, offset)
		if err != nil {
			metrics.PollErrors.WithLabelValues("submolts", "moltbook_api").Inc()
			return fmt.Errorf("submolt poll fetch failed at offset %d: %w", offset, err)
		}

		if err := m.processor.ProcessSubmolts(ctx, resp.Submolts, "submolts"); err != nil {
			return err
		}
		total += len(resp.Submolts)

		if len(resp.Submolts) < submoltPageSize {
			break
		}
	}

	m.logger.Info().Int("submolts", total).Msg("Submolt poll completed")
	return nil
}

// pollSnapshot extracts word frequencies from recently fetched posts and
// records an hourly activity snapshot.
func (m *Manager) pollSnapshot(ctx context.Context) error {
	if err := m.analyzer.UpdateWordFrequencies(ctx); err != nil {
		metrics.PollErrors.WithLabelValues("snapshot", "database").Inc()
		return fmt.Errorf("word frequency update failed: %w", err)
	}

	if err := m.analyzer.RecordSnapshot(ctx); err != nil {
		metrics.PollErrors.WithLabelValues("snapshot", "database").Inc()
		return fmt.Errorf("snapshot recording failed: %w", err)
	}

	m.broadcast("snapshot", map[string]interface{}{
		"timestamp": time.Now().UTC(),
	})
	return nil
}

// broadcast sends a message to dashboard clients when a hub is attached.
func (m *Manager) broadcast(messageType string, data interface{}) {
	if m.wsHub == nil {
		return
	}
	m.wsHub.BroadcastJSON(messageType, data)
}
