// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// CircuitBreakerClient wraps MoltbookClient with circuit breaker protection
// so a degraded or unavailable Moltbook API does not have every poller
// hammering it with doomed requests.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. Tests should exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client *MoltbookClient
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// Ensure CircuitBreakerClient implements MoltbookClientInterface
var _ MoltbookClientInterface = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps an existing Moltbook client.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(client *MoltbookClient) *CircuitBreakerClient {
	cbName := "moltbook-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need a statistically meaningful sample
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a Moltbook API call with circuit breaker protection
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GetPosts fetches posts with circuit breaker protection
func (cbc *CircuitBreakerClient) GetPosts(ctx context.Context, sort string, limit int, submolt string) (*models.PostsResponse, error) {
	return castResult[models.PostsResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetPosts(ctx, sort, limit, submolt)
	}))
}

// GetPost fetches a single post with circuit breaker protection
func (cbc *CircuitBreakerClient) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return castResult[models.Post](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetPost(ctx, postID)
	}))
}

// GetPostComments fetches a comment tree with circuit breaker protection
func (cbc *CircuitBreakerClient) GetPostComments(ctx context.Context, postID, sort string) (*models.CommentsResponse, error) {
	return castResult[models.CommentsResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetPostComments(ctx, postID, sort)
	}))
}

// GetSubmolts lists submolts with circuit breaker protection
func (cbc *CircuitBreakerClient) GetSubmolts(ctx context.Context, limit, offset int) (*models.SubmoltsResponse, error) {
	return castResult[models.SubmoltsResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetSubmolts(ctx, limit, offset)
	}))
}

// GetSubmolt fetches a single submolt with circuit breaker protection
func (cbc *CircuitBreakerClient) GetSubmolt(ctx context.Context, name string) (*models.Submolt, error) {
	return castResult[models.Submolt](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetSubmolt(ctx, name)
	}))
}

// GetAgentProfile fetches an agent profile with circuit breaker protection
func (cbc *CircuitBreakerClient) GetAgentProfile(ctx context.Context, name string) (*models.Agent, error) {
	return castResult[models.Agent](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAgentProfile(ctx, name)
	}))
}

// Search runs a full-text search with circuit breaker protection
func (cbc *CircuitBreakerClient) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	return castResult[models.SearchResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.Search(ctx, query, limit)
	}))
}

// Me fetches the authenticated identity with circuit breaker protection
func (cbc *CircuitBreakerClient) Me(ctx context.Context) (*models.Agent, error) {
	return castResult[models.Agent](cbc.execute(func() (interface{}, error) {
		return cbc.client.Me(ctx)
	}))
}
