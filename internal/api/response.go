// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/models"
)

// cacheMaxAge is the client-side cache lifetime for successful reads.
// The dashboard polls on a similar cadence, so a short shared cache
// keeps repeat loads off the database without serving stale trends.
const cacheMaxAge = 60

// respondJSON writes a success envelope with caching headers.
//
// The ETag is a weak FNV-1a hash of the payload. If the client sends a
// matching If-None-Match the body is skipped with 304.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *models.APIResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		logging.CtxErr(r.Context(), err).
			Str("path", r.URL.Path).
			Msg("failed to marshal API response")
		http.Error(w, `{"status":"error","error":{"code":"INTERNAL_ERROR","message":"response encoding failed"}}`,
			http.StatusInternalServerError)
		return
	}

	etag := computeETag(body)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	if status == http.StatusOK && r.Method == http.MethodGet {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheMaxAge))
		w.Header().Set("ETag", etag)

		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.CtxDebug(r.Context()).
			Err(err).
			Str("path", r.URL.Path).
			Msg("client disconnected during response write")
	}
}

// computeETag returns a weak ETag for the response body.
func computeETag(body []byte) string {
	h := fnv.New64a()
	h.Write(body)
	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}

// respondSuccess wraps data in the standard envelope and writes it.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, started time.Time) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// paginatedData pairs a result page with its pagination info.
type paginatedData struct {
	Items      interface{}           `json:"items"`
	Pagination models.PaginationInfo `json:"pagination"`
}

// respondPage writes a list response with pagination metadata.
// hasMore is inferred from a page filled to its limit.
func respondPage(w http.ResponseWriter, r *http.Request, items interface{}, count, limit, offset int, started time.Time) {
	respondSuccess(w, r, paginatedData{
		Items: items,
		Pagination: models.PaginationInfo{
			Limit:   limit,
			Offset:  offset,
			HasMore: count == limit,
		},
	}, started)
}

// respondError writes an error envelope. Message and details are safe
// for clients; the underlying error goes to the log only.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	if status >= http.StatusInternalServerError {
		logging.CtxError(r.Context()).
			Int("status", status).
			Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg(message)
	} else {
		logging.CtxDebug(r.Context()).
			Int("status", status).
			Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	// Echo the correlation ID so a client report can be matched to the
	// log lines for the failed request.
	if cid := logging.CorrelationIDFromContext(r.Context()); cid != "" {
		w.Header().Set("X-Correlation-ID", cid)
	}
	w.WriteHeader(status)

	resp := &models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.CtxDebug(r.Context()).Err(err).Msg("failed to encode error response")
	}
}

// respondDatabaseError hides query details behind a generic message.
func respondDatabaseError(w http.ResponseWriter, r *http.Request, err error) {
	logging.CtxErr(r.Context(), err).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Msg("database query failed")
	respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Query execution failed", nil)
}

// respondNotFound reports a missing resource.
func respondNotFound(w http.ResponseWriter, r *http.Request, resource string) {
	respondError(w, r, http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("%s not found", resource), nil)
}

// sanitizeLogValue strips control characters from user-supplied values
// before they reach the log, preventing log injection via crafted paths
// or parameters.
func sanitizeLogValue(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString("\\n")
		case r == '\r':
			b.WriteString("\\r")
		case r == '\t':
			b.WriteString("\\t")
		case r < 0x20 || r == 0x7f:
			b.WriteString(fmt.Sprintf("\\x%02x", r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
