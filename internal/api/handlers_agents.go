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

// handleAgents serves GET /api/v1/agents ordered by karma.
func (rt *Router) handleAgents(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit, offset, ok := rt.paginationParams(w, r)
	if !ok {
		return
	}

	req := ListRequest{Limit: limit, Offset: offset}
	if !validateRequest(w, r, &req) {
		return
	}

	agents, err := rt.db.ListAgents(r.Context(), req.Limit, req.Offset)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	respondPage(w, r, agents, len(agents), req.Limit, req.Offset, started)
}

// handleNewAgents serves GET /api/v1/agents/new-today, the agents first
// seen since midnight UTC.
func (rt *Router) handleNewAgents(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit, err := getIntParam(r, "limit", rt.cfg.API.DefaultPageSize)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if limit < 1 || limit > rt.cfg.API.MaxPageSize {
		limit = rt.cfg.API.DefaultPageSize
	}

	agents, aerr := rt.analyzer.NewAgentsToday(r.Context(), limit)
	if aerr != nil {
		respondDatabaseError(w, r, aerr)
		return
	}

	respondSuccess(w, r, agents, started)
}

// handleAgent serves GET /api/v1/agents/{name}.
func (rt *Router) handleAgent(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "agent name is required", nil)
		return
	}

	agent, err := rt.db.GetAgent(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(w, r, "agent")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, agent, started)
}
