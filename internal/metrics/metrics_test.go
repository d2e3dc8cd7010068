// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "posts",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "comments",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query",
			operation: "UPDATE",
			table:     "agents",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "fast query under 1ms",
			operation: "SELECT",
			table:     "submolts",
			duration:  500 * time.Microsecond,
			err:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the query - should not panic
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

// TestRecordDBQuery_ErrorCounter verifies query errors increment the error counter
func TestRecordDBQuery_ErrorCounter(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "error_counter_test"))
	RecordDBQuery("SELECT", "error_counter_test", time.Millisecond, errors.New("boom"))
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "error_counter_test"))

	if after != before+1 {
		t.Errorf("expected error counter to increment by 1, got %v -> %v", before, after)
	}
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful GET request",
			method:     "GET",
			endpoint:   "/api/v1/stats",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "not found",
			method:     "GET",
			endpoint:   "/api/v1/posts/{id}",
			statusCode: "404",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "server error",
			method:     "GET",
			endpoint:   "/api/v1/trends",
			statusCode: "500",
			duration:   250 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestRecordMoltbookRequest verifies client request metrics increment per endpoint
func TestRecordMoltbookRequest(t *testing.T) {
	before := testutil.ToFloat64(MoltbookRequestsTotal.WithLabelValues("/posts", "200"))
	RecordMoltbookRequest("/posts", "200", 40*time.Millisecond)
	after := testutil.ToFloat64(MoltbookRequestsTotal.WithLabelValues("/posts", "200"))

	if after != before+1 {
		t.Errorf("expected request counter to increment by 1, got %v -> %v", before, after)
	}
}

// TestRecordPoll verifies the last-success gauge is only set on success
func TestRecordPoll(t *testing.T) {
	RecordPoll("poll_gauge_test", time.Second, errors.New("boom"))
	failed := testutil.ToFloat64(PollLastSuccess.WithLabelValues("poll_gauge_test"))
	if failed != 0 {
		t.Errorf("expected last success to stay 0 after failure, got %v", failed)
	}

	RecordPoll("poll_gauge_test", time.Second, nil)
	succeeded := testutil.ToFloat64(PollLastSuccess.WithLabelValues("poll_gauge_test"))
	if succeeded == 0 {
		t.Error("expected last success timestamp to be set after success")
	}
}

// TestTrackActiveRequest verifies the active request gauge moves both ways
func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("expected gauge %v after increment, got %v", before+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("expected gauge %v after decrement, got %v", before, got)
	}
}

// TestRateLimiterMetrics verifies the rate limiter metrics accept updates
func TestRateLimiterMetrics(t *testing.T) {
	RateLimiterUsed.Set(42)
	if got := testutil.ToFloat64(RateLimiterUsed); got != 42 {
		t.Errorf("expected used gauge 42, got %v", got)
	}

	RateLimiterAvailable.Set(58)
	if got := testutil.ToFloat64(RateLimiterAvailable); got != 58 {
		t.Errorf("expected available gauge 58, got %v", got)
	}

	before := testutil.ToFloat64(RateLimiterExhaustedWaits)
	RateLimiterExhaustedWaits.Inc()
	if got := testutil.ToFloat64(RateLimiterExhaustedWaits); got != before+1 {
		t.Errorf("expected exhausted counter to increment, got %v -> %v", before, got)
	}

	// Histogram observation should not panic
	RateLimiterWaitSeconds.Observe(30)
}

// TestConcurrentMetricUpdates verifies metric helpers are safe under concurrency
func TestConcurrentMetricUpdates(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordDBQuery("SELECT", "posts", time.Millisecond, nil)
			RecordAPIRequest("GET", "/api/v1/stats", "200", time.Millisecond)
			RecordMoltbookRequest("/posts", "200", time.Millisecond)
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()
}
