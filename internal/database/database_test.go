// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent resource
// exhaustion in CI. Concurrent DuckDB CGO calls can hang under pressure, so
// database-backed tests are fully serialized.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database. The semaphore is held
// for the entire test lifecycle via t.Cleanup so only one test has an
// active DuckDB connection at a time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}

func testPost(id, author, submolt string, upvotes, downvotes int) *models.Post {
	p := &models.Post{
		ID:           id,
		Author:       &models.PostAuthor{ID: "id-" + author, Name: author},
		Title:        "Title for " + id,
		Content:      "Content for " + id,
		Upvotes:      upvotes,
		Downvotes:    downvotes,
		CommentCount: 0,
		CreatedAt:    time.Now().UTC().Add(-time.Minute),
	}
	if submolt != "" {
		p.Submolt = &models.Submolt{Name: submolt, DisplayName: submolt}
	}
	return p
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestUpsertPostInsertThenUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	post := testPost("p-1", "writer", "agora", 10, 2)
	inserted, err := db.UpsertPost(ctx, post, now)
	if err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first upsert to insert")
	}

	rec, err := db.GetPost(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if rec.Score != 8 {
		t.Errorf("Expected score 8, got %d", rec.Score)
	}
	if rec.AgentName != "writer" {
		t.Errorf("Expected agent writer, got %s", rec.AgentName)
	}
	if rec.Submolt != "agora" {
		t.Errorf("Expected submolt agora, got %s", rec.Submolt)
	}

	// Revisit with changed votes and comment count. Title changes must be
	// ignored on the update path.
	post.Upvotes = 50
	post.CommentCount = 7
	post.IsPinned = true
	post.Title = "Edited title"
	inserted, err = db.UpsertPost(ctx, post, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("UpsertPost update failed: %v", err)
	}
	if inserted {
		t.Error("Expected second upsert to update, not insert")
	}

	rec, err = db.GetPost(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetPost after update failed: %v", err)
	}
	if rec.Score != 48 {
		t.Errorf("Expected updated score 48, got %d", rec.Score)
	}
	if rec.CommentCount != 7 {
		t.Errorf("Expected comment count 7, got %d", rec.CommentCount)
	}
	if !rec.IsPinned {
		t.Error("Expected post to be pinned after update")
	}
	if rec.Title != "Title for p-1" {
		t.Errorf("Title should not change on update, got %s", rec.Title)
	}
}

func TestUpsertPostEnsuresReferences(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	post := testPost("p-ref", "newagent", "newmolt", 1, 0)
	if _, err := db.UpsertPost(ctx, post, time.Now().UTC()); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	agent, err := db.GetAgent(ctx, "newagent")
	if err != nil {
		t.Fatalf("Expected agent row created by upsert: %v", err)
	}
	if agent.FirstSeenAt.IsZero() || agent.LastSeenAt.IsZero() {
		t.Error("Agent sighting timestamps not set")
	}

	submolt, err := db.GetSubmolt(ctx, "newmolt")
	if err != nil {
		t.Fatalf("Expected submolt row created by upsert: %v", err)
	}
	if submolt.DisplayName != "newmolt" {
		t.Errorf("Expected display name newmolt, got %s", submolt.DisplayName)
	}
}

func TestGetPostNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetPost(context.Background(), "missing")
	if err != sql.ErrNoRows {
		t.Errorf("Expected sql.ErrNoRows, got %v", err)
	}
}

func TestListPostsFilterAndSort(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	posts := []*models.Post{
		testPost("p-a", "alice", "agora", 5, 0),
		testPost("p-b", "bob", "agora", 100, 1),
		testPost("p-c", "alice", "lab", 1, 0),
	}
	for i, p := range posts {
		p.CreatedAt = now.Add(time.Duration(-i) * time.Hour)
		if _, err := db.UpsertPost(ctx, p, now); err != nil {
			t.Fatalf("UpsertPost failed: %v", err)
		}
	}

	agora, err := db.ListPosts(ctx, PostQuery{Submolt: "agora", Sort: "top", Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(agora) != 2 {
		t.Fatalf("Expected 2 agora posts, got %d", len(agora))
	}
	if agora[0].ID != "p-b" {
		t.Errorf("Expected highest scored post first, got %s", agora[0].ID)
	}

	byAgent, err := db.ListPosts(ctx, PostQuery{Agent: "alice", Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts by agent failed: %v", err)
	}
	if len(byAgent) != 2 {
		t.Fatalf("Expected 2 alice posts, got %d", len(byAgent))
	}
	if byAgent[0].ID != "p-a" {
		t.Errorf("Expected newest alice post first, got %s", byAgent[0].ID)
	}
}

func TestInsertCommentTreeFlattens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	post := testPost("p-comments", "op", "agora", 1, 0)
	if _, err := db.UpsertPost(ctx, post, now); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	tree := []models.Comment{
		{
			ID:        "c-1",
			Author:    &models.PostAuthor{ID: "id-r1", Name: "replier"},
			Content:   "top",
			Upvotes:   4,
			Downvotes: 1,
			CreatedAt: now,
			Replies: []models.Comment{
				{
					ID:        "c-2",
					Author:    &models.PostAuthor{ID: "id-r2", Name: "nested"},
					Content:   "mid",
					CreatedAt: now.Add(time.Minute),
					Replies: []models.Comment{
						{ID: "c-3", Content: "deep", CreatedAt: now.Add(2 * time.Minute)},
					},
				},
			},
		},
	}

	inserted, err := db.InsertCommentTree(ctx, "p-comments", tree, now)
	if err != nil {
		t.Fatalf("InsertCommentTree failed: %v", err)
	}
	if inserted != 3 {
		t.Errorf("Expected 3 inserted comments, got %d", inserted)
	}

	// Re-inserting the same tree must be a no-op.
	inserted, err = db.InsertCommentTree(ctx, "p-comments", tree, now)
	if err != nil {
		t.Fatalf("InsertCommentTree rerun failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("Expected 0 inserted on rerun, got %d", inserted)
	}

	comments, err := db.PostComments(ctx, "p-comments", 0)
	if err != nil {
		t.Fatalf("PostComments failed: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("Expected 3 comments, got %d", len(comments))
	}

	byID := make(map[string]models.CommentRecord)
	for _, c := range comments {
		byID[c.ID] = c
	}
	if byID["c-1"].ParentID != "" {
		t.Errorf("Top comment should have no parent, got %s", byID["c-1"].ParentID)
	}
	if byID["c-2"].ParentID != "c-1" {
		t.Errorf("Expected c-2 parent c-1, got %s", byID["c-2"].ParentID)
	}
	if byID["c-3"].ParentID != "c-2" {
		t.Errorf("Expected c-3 parent c-2, got %s", byID["c-3"].ParentID)
	}
	if byID["c-1"].Score != 3 {
		t.Errorf("Expected c-1 score 3, got %d", byID["c-1"].Score)
	}
}

func TestUpsertAgentProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Minimal row first, as created from a post author embed.
	if err := db.EnsureAgent(ctx, "chronicler", "agent-42"); err != nil {
		t.Fatalf("EnsureAgent failed: %v", err)
	}

	agent := &models.Agent{
		ID:             "agent-42",
		Name:           "chronicler",
		Description:    "Records everything.",
		Karma:          1337,
		FollowerCount:  89,
		FollowingCount: 12,
		IsClaimed:      true,
		Owner:          &models.AgentOwner{XHandle: "human_operator"},
		AvatarURL:      "https://cdn.moltbook.com/avatars/chronicler.png",
		CreatedAt:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.UpsertAgentProfile(ctx, agent); err != nil {
		t.Fatalf("UpsertAgentProfile failed: %v", err)
	}

	rec, err := db.GetAgent(ctx, "chronicler")
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if rec.Karma != 1337 {
		t.Errorf("Expected karma 1337, got %d", rec.Karma)
	}
	if !rec.IsClaimed {
		t.Error("Expected claimed agent")
	}
	if rec.OwnerXHandle != "human_operator" {
		t.Errorf("Expected owner handle, got %s", rec.OwnerXHandle)
	}

	// Profile refresh must keep first_seen_at stable.
	firstSeen := rec.FirstSeenAt
	agent.Karma = 1400
	if err := db.UpsertAgentProfile(ctx, agent); err != nil {
		t.Fatalf("UpsertAgentProfile refresh failed: %v", err)
	}
	rec, err = db.GetAgent(ctx, "chronicler")
	if err != nil {
		t.Fatalf("GetAgent after refresh failed: %v", err)
	}
	if rec.Karma != 1400 {
		t.Errorf("Expected refreshed karma 1400, got %d", rec.Karma)
	}
	if !rec.FirstSeenAt.Equal(firstSeen) {
		t.Error("first_seen_at changed on profile refresh")
	}
}

func TestEnsureSubmoltCoalescesCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	full := &models.Submolt{
		Name:            "agora",
		DisplayName:     "The Agora",
		Description:     "Open discussion",
		SubscriberCount: 400,
	}
	if err := db.EnsureSubmolt(ctx, "agora", full); err != nil {
		t.Fatalf("EnsureSubmolt failed: %v", err)
	}

	// A partial embed without counts must not zero the stored values.
	partial := &models.Submolt{Name: "agora", DisplayName: "The Agora"}
	if err := db.EnsureSubmolt(ctx, "agora", partial); err != nil {
		t.Fatalf("EnsureSubmolt partial failed: %v", err)
	}

	rec, err := db.GetSubmolt(ctx, "agora")
	if err != nil {
		t.Fatalf("GetSubmolt failed: %v", err)
	}
	if rec.SubscriberCount == 0 {
		t.Error("Subscriber count lost on partial update")
	}
}

func TestRecordCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := db.UpsertPost(ctx, testPost("p-1", "a", "m", 1, 0), now); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}
	if _, err := db.UpsertPost(ctx, testPost("p-2", "b", "m", 1, 0), now); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts failed: %v", err)
	}
	if counts.Posts != 2 {
		t.Errorf("Expected 2 posts, got %d", counts.Posts)
	}
	if counts.Agents != 2 {
		t.Errorf("Expected 2 agents, got %d", counts.Agents)
	}
	if counts.Submolts != 1 {
		t.Errorf("Expected 1 submolt, got %d", counts.Submolts)
	}
}
