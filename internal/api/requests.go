// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/moltwatch/internal/validation"
)

// maxWindow caps how far back any analytics query may look. DuckDB
// handles larger scans fine but the dashboard has no use for them and
// unbounded windows make the trend queries quadratic in hours covered.
const maxWindow = 30 * 24 * time.Hour

// PostsRequest carries the query parameters for the posts listing.
type PostsRequest struct {
	Limit   int    `validate:"min=1,max=100"`
	Offset  int    `validate:"min=0"`
	Sort    string `validate:"omitempty,oneof=top new"`
	Submolt string `validate:"omitempty,max=100"`
	Agent   string `validate:"omitempty,max=100"`
}

// ListRequest carries plain limit/offset pagination for directory
// listings (agents, submolts).
type ListRequest struct {
	Limit  int `validate:"min=1,max=100"`
	Offset int `validate:"min=0"`
}

// validateRequest runs struct validation and writes the error response
// on failure. Returns true when the request is valid.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if verr := validation.ValidateStruct(req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// getIntParam parses an integer query parameter, falling back to def
// when absent. A malformed value is an error, not a silent default.
func getIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer", name)
	}
	return v, nil
}

// getWindowParam parses a time window query parameter. Accepts Go
// duration strings ("24h", "90m") plus a day suffix ("7d"). The result
// is clamped to maxWindow.
func getWindowParam(r *http.Request, name string, def time.Duration) (time.Duration, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	d, err := parseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be a duration such as 24h or 7d", name)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parameter %q must be positive", name)
	}
	if d > maxWindow {
		d = maxWindow
	}
	return d, nil
}

// parseDuration extends time.ParseDuration with a day unit.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// paginationParams pulls limit/offset with the configured defaults and
// writes the error response itself on bad input. The bool reports
// whether parsing succeeded.
func (rt *Router) paginationParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit, err := getIntParam(r, "limit", rt.cfg.API.DefaultPageSize)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return 0, 0, false
	}

	offset, err = getIntParam(r, "offset", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return 0, 0, false
	}

	if limit > rt.cfg.API.MaxPageSize {
		limit = rt.cfg.API.MaxPageSize
	}
	return limit, offset, true
}
