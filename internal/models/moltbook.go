// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package models

import (
	"time"
)

// Agent represents a Moltbook agent account as returned by the Moltbook API.
// Agents are the authors of all posts and comments on the platform. The
// Owner field is only populated for claimed agents and carries the X handle
// of the human operator.
//
// Fields:
//   - ID: Moltbook agent identifier
//   - Name: Unique agent name (primary lookup key across the API)
//   - Description: Self-reported agent bio
//   - Karma: Aggregate vote score across the agent's activity
//   - FollowerCount: Number of agents following this agent
//   - FollowingCount: Number of agents this agent follows
//   - IsClaimed: Whether a human operator has claimed the agent
//   - Owner: Operator details (nil for unclaimed agents)
//   - AvatarURL: Profile image URL
//   - CreatedAt: Account creation time
type Agent struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	Karma          int         `json:"karma"`
	FollowerCount  int         `json:"follower_count"`
	FollowingCount int         `json:"following_count"`
	IsClaimed      bool        `json:"is_claimed"`
	Owner          *AgentOwner `json:"owner,omitempty"`
	AvatarURL      string      `json:"avatar_url,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// AgentOwner identifies the human operator of a claimed agent.
type AgentOwner struct {
	XHandle string `json:"x_handle,omitempty"`
}

// Submolt represents a Moltbook community (a topic-scoped feed that posts
// belong to).
//
// Fields:
//   - Name: Unique submolt name (primary key, appears in post payloads)
//   - DisplayName: Human-friendly title
//   - Description: Community description
//   - SubscriberCount: Number of subscribed agents
//   - PostCount: Total posts in the submolt
//   - AvatarURL: Community avatar image URL
//   - BannerURL: Community banner image URL
//   - CreatedAt: Community creation time
type Submolt struct {
	Name            string    `json:"name"`
	DisplayName     string    `json:"display_name,omitempty"`
	Description     string    `json:"description,omitempty"`
	SubscriberCount int       `json:"subscriber_count"`
	PostCount       int       `json:"post_count"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	BannerURL       string    `json:"banner_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// PostAuthor is the compact author object embedded in post and comment
// payloads. Full agent details require a separate profile fetch.
type PostAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Post represents a Moltbook post as returned by the feed and single-post
// endpoints. The Submolt field may be a full object or absent depending on
// the endpoint.
//
// Fields:
//   - ID: Post identifier
//   - Author: Compact author reference
//   - Submolt: Community the post belongs to (nil on some endpoints)
//   - Title: Post title
//   - Content: Post body text (empty for link posts)
//   - URL: External link (empty for text posts)
//   - Upvotes: Upvote count
//   - Downvotes: Downvote count
//   - CommentCount: Number of comments
//   - IsPinned: Whether the post is pinned in its submolt
//   - CreatedAt: Post creation time
type Post struct {
	ID           string      `json:"id"`
	Author       *PostAuthor `json:"author,omitempty"`
	Submolt      *Submolt    `json:"submolt,omitempty"`
	Title        string      `json:"title"`
	Content      string      `json:"content,omitempty"`
	URL          string      `json:"url,omitempty"`
	Upvotes      int         `json:"upvotes"`
	Downvotes    int         `json:"downvotes"`
	CommentCount int         `json:"comment_count"`
	IsPinned     bool        `json:"is_pinned"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Score returns the net vote score (upvotes minus downvotes).
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}

// AuthorName returns the author name or empty string when absent.
func (p *Post) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Name
}

// SubmoltName returns the submolt name or empty string when absent.
func (p *Post) SubmoltName() string {
	if p.Submolt == nil {
		return ""
	}
	return p.Submolt.Name
}

// Comment represents a Moltbook comment. The API returns comments as a tree
// via the Replies field; persistence flattens the tree and records ParentID
// per node.
//
// Fields:
//   - ID: Comment identifier
//   - Author: Compact author reference
//   - Content: Comment body text
//   - Upvotes: Upvote count
//   - Downvotes: Downvote count
//   - Replies: Child comments (recursive)
//   - CreatedAt: Comment creation time
type Comment struct {
	ID        string      `json:"id"`
	Author    *PostAuthor `json:"author,omitempty"`
	Content   string      `json:"content,omitempty"`
	Upvotes   int         `json:"upvotes"`
	Downvotes int         `json:"downvotes"`
	Replies   []Comment   `json:"replies,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Score returns the net vote score (upvotes minus downvotes).
func (c *Comment) Score() int {
	return c.Upvotes - c.Downvotes
}

// AuthorName returns the author name or empty string when absent.
func (c *Comment) AuthorName() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Name
}

// PostsResponse wraps the post list returned by /posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// CommentsResponse wraps the comment tree returned by /posts/{id}/comments.
type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}

// SubmoltsResponse wraps the submolt list returned by /submolts.
type SubmoltsResponse struct {
	Submolts []Submolt `json:"submolts"`
}

// AgentProfileResponse wraps the single-agent payload returned by
// /agents/profile.
type AgentProfileResponse struct {
	Agent Agent `json:"agent"`
}

// SearchResponse wraps the mixed results returned by /search.
type SearchResponse struct {
	Posts  []Post  `json:"posts,omitempty"`
	Agents []Agent `json:"agents,omitempty"`
}
