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
)

// handleSubmolts serves GET /api/v1/submolts ordered by subscriber count.
func (rt *Router) handleSubmolts(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit, offset, ok := rt.paginationParams(w, r)
	if !ok {
		return
	}

	req := ListRequest{Limit: limit, Offset: offset}
	if !validateRequest(w, r, &req) {
		return
	}

	submolts, err := rt.db.ListSubmolts(r.Context(), req.Limit, req.Offset)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondPage(w, r, submolts, len(submolts), req.Limit, req.Offset, started)
}

// handleSubmolt serves GET /api/v1/submolts/{name}.
func (rt *Router) handleSubmolt(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "submolt name is required", nil)
		return
	}

	submolt, err := rt.db.GetSubmolt(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(w, r, "submolt")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, submolt, started)
}
