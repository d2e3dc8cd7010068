// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package models

import (
	"time"
)

// PostRecord is a post row as persisted by the observatory. Unlike the wire
// Post type, author and submolt references are flattened into columns and a
// fetch timestamp is recorded for freshness tracking.
type PostRecord struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agent_id,omitempty"`
	AgentName    string    `json:"agent_name"`
	Submolt      string    `json:"submolt,omitempty"`
	Title        string    `json:"title"`
	Content      string    `json:"content,omitempty"`
	URL          string    `json:"url,omitempty"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
	IsPinned     bool      `json:"is_pinned"`
	CreatedAt    time.Time `json:"created_at"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// CommentRecord is a comment row with its tree position flattened into
// PostID and ParentID columns. ParentID is empty for top-level comments.
type CommentRecord struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AgentID   string    `json:"agent_id,omitempty"`
	AgentName string    `json:"agent_name"`
	ParentID  string    `json:"parent_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	FetchedAt time.Time `json:"fetched_at"`
}

// AgentRecord is an agent row. FirstSeenAt records when the observatory
// first encountered the agent, LastSeenAt the most recent sighting.
type AgentRecord struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Karma          int       `json:"karma"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	IsClaimed      bool      `json:"is_claimed"`
	OwnerXHandle   string    `json:"owner_x_handle,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	FirstSeenAt    time.Time `json:"first_seen_at"`
	LastSeenAt     time.Time `json:"last_seen_at"`
}

// SubmoltRecord is a submolt row keyed by name.
type SubmoltRecord struct {
	Name            string    `json:"name"`
	DisplayName     string    `json:"display_name,omitempty"`
	Description     string    `json:"description,omitempty"`
	SubscriberCount int       `json:"subscriber_count"`
	PostCount       int       `json:"post_count"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	BannerURL       string    `json:"banner_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	FirstSeenAt     time.Time `json:"first_seen_at"`
}
