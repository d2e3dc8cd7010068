// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/models"
)

// maxPostComments caps the comment tree size returned with a single post.
const maxPostComments = 500

// handlePosts serves GET /api/v1/posts with optional submolt, agent and
// sort filters.
func (rt *Router) handlePosts(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit, offset, ok := rt.paginationParams(w, r)
	if !ok {
		return
	}

	req := PostsRequest{
		Limit:   limit,
		Offset:  offset,
		Sort:    r.URL.Query().Get("sort"),
		Submolt: r.URL.Query().Get("submolt"),
		Agent:   r.URL.Query().Get("agent"),
	}
	if !validateRequest(w, r, &req) {
		return
	}

	posts, err := rt.db.ListPosts(r.Context(), database.PostQuery{
		Submolt: req.Submolt,
		Agent:   req.Agent,
		Sort:    req.Sort,
		Limit:   req.Limit,
		Offset:  req.Offset,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondPage(w, r, posts, len(posts), req.Limit, req.Offset, started)
}

// postDetail combines a post with its stored comment tree.
type postDetail struct {
	Post     *models.PostRecord     `json:"post"`
	Comments []models.CommentRecord `json:"comments"`
}

// handlePost serves GET /api/v1/posts/{id}.
func (rt *Router) handlePost(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "post id is required", nil)
		return
	}

	post, err := rt.db.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(w, r, "post")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	comments, err := rt.db.PostComments(r.Context(), id, maxPostComments)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, postDetail{Post: post, Comments: comments}, started)
}
