// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package sync

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/moltwatch/internal/analyzer"
	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/models"
)

// stubClient returns canned payloads and records call counts.
type stubClient struct {
	mu           sync.Mutex
	posts        []models.Post
	comments     []models.Comment
	submolts     []models.Submolt
	agent        *models.Agent
	postCalls    int
	commentCalls int
	submoltCalls int
	agentCalls   int
}

var _ MoltbookClientInterface = (*stubClient)(nil)

func (s *stubClient) GetPosts(_ context.Context, _ string, _ int, _ string) (*models.PostsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postCalls++
	return &models.PostsResponse{Posts: s.posts}, nil
}

func (s *stubClient) GetPost(_ context.Context, _ string) (*models.Post, error) {
	return &models.Post{}, nil
}

func (s *stubClient) GetPostComments(_ context.Context, _, _ string) (*models.CommentsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentCalls++
	return &models.CommentsResponse{Comments: s.comments}, nil
}

func (s *stubClient) GetSubmolts(_ context.Context, _, _ int) (*models.SubmoltsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submoltCalls++
	return &models.SubmoltsResponse{Submolts: s.submolts}, nil
}

func (s *stubClient) GetSubmolt(_ context.Context, name string) (*models.Submolt, error) {
	return &models.Submolt{Name: name}, nil
}

func (s *stubClient) GetAgentProfile(_ context.Context, name string) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agentCalls++
	if s.agent != nil {
		return s.agent, nil
	}
	return &models.Agent{ID: name, Name: name}, nil
}

func (s *stubClient) Search(_ context.Context, _ string, _ int) (*models.SearchResponse, error) {
	return &models.SearchResponse{}, nil
}

func (s *stubClient) Me(_ context.Context) (*models.Agent, error) {
	return &models.Agent{Name: "observatory"}, nil
}

// recordingHub captures broadcast messages.
type recordingHub struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordingHub) BroadcastJSON(messageType string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, messageType)
}

func (h *recordingHub) got(messageType string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.messages {
		if m == messageType {
			return true
		}
	}
	return false
}

func setupManager(t *testing.T, client MoltbookClientInterface, hub WebSocketHub) (*Manager, *database.DB) {
	t.Helper()

	syncTestSemaphore <- struct{}{}
	t.Cleanup(func() { <-syncTestSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Long intervals so only the initial runs fire during tests.
	cfg := &config.Config{
		Poll: config.PollConfig{
			PostsInterval:    time.Hour,
			CommentsInterval: time.Hour,
			AgentsInterval:   time.Hour,
			SubmoltsInterval: time.Hour,
			SnapshotInterval: time.Hour,
			PostsPageSize:    100,
			CommentsTopPosts: 25,
		},
		Analytics: config.AnalyticsConfig{
			SentimentSampleSize: 500,
			SentimentCacheTTL:   10 * time.Minute,
			StatsCacheTTL:       5 * time.Minute,
			TrendMinCount:       3,
			TrendTopWords:       20,
		},
	}

	an := analyzer.New(db, &cfg.Analytics)
	t.Cleanup(an.Stop)

	return NewManager(client, db, an, cfg, hub), db
}

// TestManagerStartStopLifecycle verifies double start and double stop error
func TestManagerStartStopLifecycle(t *testing.T) {
	m, _ := setupManager(t, &stubClient{}, nil)
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("second Stop() should fail")
	}
}

// TestManagerInitialPollsRunOnStart verifies every poller fires once at startup
func TestManagerInitialPollsRunOnStart(t *testing.T) {
	client := &stubClient{
		posts: []models.Post{
			{
				ID:        "p1",
				Author:    &models.PostAuthor{ID: "echo", Name: "echo"},
				Submolt:   &models.Submolt{Name: "agora"},
				Title:     "Launch",
				Upvotes:   7,
				CreatedAt: time.Now().UTC(),
			},
		},
		submolts: []models.Submolt{{Name: "agora"}},
	}
	hub := &recordingHub{}

	m, db := setupManager(t, client, hub)
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	client.mu.Lock()
	postCalls, submoltCalls := client.postCalls, client.submoltCalls
	client.mu.Unlock()

	if postCalls != 1 {
		t.Errorf("postCalls = %d, want 1", postCalls)
	}
	if submoltCalls != 1 {
		t.Errorf("submoltCalls = %d, want 1", submoltCalls)
	}

	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if counts.Posts != 1 {
		t.Errorf("stored posts = %d, want 1", counts.Posts)
	}

	if !hub.got("posts_update") {
		t.Error("expected posts_update broadcast after new posts landed")
	}
	if m.LastPollTime().IsZero() {
		t.Error("LastPollTime() should be set after a successful post poll")
	}
}

// TestTriggerPostPoll verifies manual polls work without Start
func TestTriggerPostPoll(t *testing.T) {
	client := &stubClient{
		posts: []models.Post{
			{
				ID:        "p1",
				Author:    &models.PostAuthor{ID: "molty", Name: "molty"},
				Submolt:   &models.Submolt{Name: "lab"},
				Title:     "Manual",
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	m, db := setupManager(t, client, nil)
	if err := m.TriggerPostPoll(context.Background()); err != nil {
		t.Fatalf("TriggerPostPoll() error = %v", err)
	}

	if _, err := db.GetPost(context.Background(), "p1"); err != nil {
		t.Errorf("GetPost() after manual poll error = %v", err)
	}
}

// TestCommentPollRefreshesActivePosts verifies recent posts get their trees fetched
func TestCommentPollRefreshesActivePosts(t *testing.T) {
	client := &stubClient{
		posts: []models.Post{
			{
				ID:        "p1",
				Author:    &models.PostAuthor{ID: "echo", Name: "echo"},
				Submolt:   &models.Submolt{Name: "agora"},
				Title:     "Active",
				Upvotes:   9,
				CreatedAt: time.Now().UTC(),
			},
		},
		comments: []models.Comment{
			{
				ID:        "c1",
				Author:    &models.PostAuthor{ID: "molty", Name: "molty"},
				Content:   "hello",
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	m, db := setupManager(t, client, nil)
	ctx := context.Background()

	if err := m.pollPosts(ctx); err != nil {
		t.Fatalf("pollPosts() error = %v", err)
	}
	if err := m.pollComments(ctx); err != nil {
		t.Fatalf("pollComments() error = %v", err)
	}

	comments, err := db.PostComments(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("PostComments() error = %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("stored comments = %d, want 1", len(comments))
	}
}

// TestAgentPollRefreshesActiveAgents verifies posting agents get profile refreshes
func TestAgentPollRefreshesActiveAgents(t *testing.T) {
	client := &stubClient{
		posts: []models.Post{
			{
				ID:        "p1",
				Author:    &models.PostAuthor{ID: "oracle", Name: "oracle"},
				Submolt:   &models.Submolt{Name: "agora"},
				Title:     "By oracle",
				CreatedAt: time.Now().UTC(),
			},
		},
		agent: &models.Agent{ID: "a9", Name: "oracle", Karma: 555},
	}

	m, db := setupManager(t, client, nil)
	ctx := context.Background()

	if err := m.pollPosts(ctx); err != nil {
		t.Fatalf("pollPosts() error = %v", err)
	}
	if err := m.pollAgents(ctx); err != nil {
		t.Fatalf("pollAgents() error = %v", err)
	}

	agent, err := db.GetAgent(ctx, "oracle")
	if err != nil {
		t.Fatalf("GetAgent() error = %v", err)
	}
	if agent.Karma != 555 {
		t.Errorf("Karma = %d, want 555", agent.Karma)
	}
}

// TestManagerLoggerCarriesComponent verifies poll log lines are tagged with
// the poller component so they can be filtered from request logs.
func TestManagerLoggerCarriesComponent(t *testing.T) {
	m, _ := setupManager(t, &stubClient{}, nil)

	var buf bytes.Buffer
	m.logger = m.logger.Output(&buf)
	m.logger.Info().Msg("cycle")

	if !strings.Contains(buf.String(), `"component":"poller"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}
