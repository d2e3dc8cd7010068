// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
client.go - Moltbook REST API Client

This file implements a read-only client for the public Moltbook API. Every
request is admitted through the key pool first, which blocks until some API
key has budget in its rolling window, and carries that key as a Bearer
token.

Endpoints used:
  - GET /posts?sort=&limit=&submolt=
  - GET /posts/{id}
  - GET /posts/{id}/comments?sort=
  - GET /submolts?limit=&offset=
  - GET /submolts/{name}
  - GET /agents/profile?name=
  - GET /search?q=&limit=
  - GET /agents/me
*/

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
	"github.com/tomtom215/moltwatch/internal/ratelimit"
)

// userAgent identifies the observatory to the Moltbook API.
const userAgent = "MoltbookObservatory/1.0"

// MoltbookClientInterface defines the Moltbook API operations. Both
// MoltbookClient and CircuitBreakerClient implement this interface.
type MoltbookClientInterface interface {
	GetPosts(ctx context.Context, sort string, limit int, submolt string) (*models.PostsResponse, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetPostComments(ctx context.Context, postID, sort string) (*models.CommentsResponse, error)
	GetSubmolts(ctx context.Context, limit, offset int) (*models.SubmoltsResponse, error)
	GetSubmolt(ctx context.Context, name string) (*models.Submolt, error)
	GetAgentProfile(ctx context.Context, name string) (*models.Agent, error)
	Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error)
	Me(ctx context.Context) (*models.Agent, error)
}

// Ensure MoltbookClient implements MoltbookClientInterface
var _ MoltbookClientInterface = (*MoltbookClient)(nil)

// MoltbookClient provides read-only access to the Moltbook API with key
// rotation and retry handling.
type MoltbookClient struct {
	baseURL        string
	pool           *ratelimit.KeyPool
	httpClient     *http.Client
	pacer          *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewMoltbookClient creates a Moltbook API client. The key pool gates every
// request; the pacer additionally smooths request bursts at the transport
// level so admitted calls do not all fire at once.
func NewMoltbookClient(cfg *config.MoltbookConfig, pool *ratelimit.KeyPool) *MoltbookClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	// Pace to the aggregate pool budget per second, with a small burst.
	perSecond := float64(cfg.RateLimit*pool.Len()) / ratelimit.Window.Seconds()
	if perSecond <= 0 {
		perSecond = 1
	}

	return &MoltbookClient{
		baseURL:        baseURL,
		pool:           pool,
		pacer:          rate.NewLimiter(rate.Limit(perSecond), 5),
		maxRetries:     cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// GetPosts fetches a page of posts. Sort accepts "hot", "new", "top", and
// "rising"; submolt filters to one community when non-empty.
func (c *MoltbookClient) GetPosts(ctx context.Context, sort string, limit int, submolt string) (*models.PostsResponse, error) {
	params := url.Values{}
	params.Set("sort", sort)
	params.Set("limit", strconv.Itoa(limit))
	if submolt != "" {
		params.Set("submolt", submolt)
	}

	var resp models.PostsResponse
	if err := c.getJSON(ctx, "/posts", params, &resp); err != nil {
		return nil, fmt.Errorf("moltbook posts request failed: %w", err)
	}
	return &resp, nil
}

// GetPost fetches a single post by ID.
func (c *MoltbookClient) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var resp models.Post
	if err := c.getJSON(ctx, "/posts/"+url.PathEscape(postID), nil, &resp); err != nil {
		return nil, fmt.Errorf("moltbook post request failed: %w", err)
	}
	return &resp, nil
}

// GetPostComments fetches the comment tree of a post. Sort accepts "top",
// "new", and "controversial".
func (c *MoltbookClient) GetPostComments(ctx context.Context, postID, sort string) (*models.CommentsResponse, error) {
	params := url.Values{}
	params.Set("sort", sort)

	var resp models.CommentsResponse
	if err := c.getJSON(ctx, "/posts/"+url.PathEscape(postID)+"/comments", params, &resp); err != nil {
		return nil, fmt.Errorf("moltbook comments request failed: %w", err)
	}
	return &resp, nil
}

// GetSubmolts lists submolts with offset pagination.
func (c *MoltbookClient) GetSubmolts(ctx context.Context, limit, offset int) (*models.SubmoltsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp models.SubmoltsResponse
	if err := c.getJSON(ctx, "/submolts", params, &resp); err != nil {
		return nil, fmt.Errorf("moltbook submolts request failed: %w", err)
	}
	return &resp, nil
}

// GetSubmolt fetches a single submolt by name.
func (c *MoltbookClient) GetSubmolt(ctx context.Context, name string) (*models.Submolt, error) {
	var resp models.Submolt
	if err := c.getJSON(ctx, "/submolts/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, fmt.Errorf("moltbook submolt request failed: %w", err)
	}
	return &resp, nil
}

// GetAgentProfile fetches the public profile of an agent by name.
func (c *MoltbookClient) GetAgentProfile(ctx context.Context, name string) (*models.Agent, error) {
	params := url.Values{}
	params.Set("name", name)

	var resp models.AgentProfileResponse
	if err := c.getJSON(ctx, "/agents/profile", params, &resp); err != nil {
		return nil, fmt.Errorf("moltbook agent profile request failed: %w", err)
	}
	return &resp.Agent, nil
}

// Search runs a full-text search over posts and agents.
func (c *MoltbookClient) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp models.SearchResponse
	if err := c.getJSON(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("moltbook search request failed: %w", err)
	}
	return &resp, nil
}

// Me fetches the agent identity behind the current API key. Used as a
// connectivity and credential check at startup.
func (c *MoltbookClient) Me(ctx context.Context) (*models.Agent, error) {
	var resp models.AgentProfileResponse
	if err := c.getJSON(ctx, "/agents/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("moltbook identity request failed: %w", err)
	}
	return &resp.Agent, nil
}

// getJSON performs an admitted GET request and decodes the JSON response.
func (c *MoltbookClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	resp, err := c.doRequestWithRateLimit(ctx, endpoint, reqURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit executes an HTTP request after key pool admission,
// with automatic retry on HTTP 429.
//
// Retry behavior:
//   - Exponential backoff: base, 2x, 4x, 8x, 16x
//   - Respects Retry-After header (RFC 6585) if present
//   - Each retry goes through pool admission again, so a retried call
//     counts against a key budget like any other call and may rotate to a
//     different key
func (c *MoltbookClient) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		key, err := c.pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("rate limit admission failed: %w", err)
		}
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+key)
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordMoltbookRequest(endpoint, "error", time.Since(start))
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		metrics.RecordMoltbookRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			body := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			return nil, fmt.Errorf("request to %s failed with status %d: %s", endpoint, resp.StatusCode, body)
		}

		// Rate limited despite local accounting (shared key or server-side
		// tightening). Close body and retry with backoff.
		_ = resp.Body.Close()
		metrics.MoltbookRetries.WithLabelValues(endpoint).Inc()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// readBodyForError reads up to 64KB of a response body for inclusion in an
// error message.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return "(failed to read body)"
	}
	return strings.TrimSpace(string(body))
}
