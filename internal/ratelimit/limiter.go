// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Window is the trailing interval against which per-key capacity is measured.
// The Moltbook API expresses key budgets as calls per minute.
const Window = time.Minute

// KeyStatus reports usage of a single key within the current window.
type KeyStatus struct {
	Used      int `json:"used"`
	Available int `json:"available"`
	Limit     int `json:"limit"`
}

// KeyLimiter admits or defers calls for one API key so that no more than
// capacity calls are admitted in any trailing 60-second window.
//
// The limiter keeps the admission timestamps of recent calls in insertion
// order (admissions are monotonic in time, so insertion order is
// chronological). Stale timestamps are pruned lazily on each admission
// decision; they are never corrected retroactively.
//
// Thread Safety: all methods are safe for concurrent use. The mutex covers
// prune+check+append as one critical section so two racing callers can never
// both observe free capacity and overshoot the cap.
type KeyLimiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	calls    []time.Time

	// Hooks for deterministic tests. Production uses time.Now / timer sleeps.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewKeyLimiter creates a limiter admitting at most capacity calls per
// 60-second window.
func NewKeyLimiter(capacity int) *KeyLimiter {
	return &KeyLimiter{
		capacity: capacity,
		window:   Window,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pruneLocked drops timestamps at or older than now-window. Caller holds mu.
func (l *KeyLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}

// oldestLocked returns the oldest retained timestamp. Caller holds mu.
func (l *KeyLimiter) oldestLocked() (time.Time, bool) {
	if len(l.calls) == 0 {
		return time.Time{}, false
	}
	return l.calls[0], true
}

// TryAcquire attempts to admit a call immediately. It prunes the window and,
// if the retained count is below capacity, records the admission and returns
// true. On false no state changes.
func (l *KeyLimiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)
	if len(l.calls) < l.capacity {
		l.calls = append(l.calls, now)
		return true
	}
	return false
}

// Wait blocks until a call can be admitted, then records the admission.
//
// If the key is at capacity, Wait sleeps until the oldest in-window timestamp
// exits the window (window - (now - oldest)). The recorded timestamp is taken
// after the wait so it reflects actual admission time. On context
// cancellation nothing is admitted.
//
// The limiter mutex is held across the sleep: concurrent waiters on the same
// key are served one at a time, which is exactly the serialization the per-key
// budget implies. Multi-key callers should use KeyPool.Acquire instead.
func (l *KeyLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)
	if len(l.calls) >= l.capacity {
		if oldest, ok := l.oldestLocked(); ok {
			if d := l.window - now.Sub(oldest); d > 0 {
				if err := l.sleep(ctx, d); err != nil {
					return err
				}
			}
		}
	}
	l.calls = append(l.calls, l.now())
	return nil
}

// Usage returns (used, available) counts for the window ending at now. Used
// counts timestamps strictly newer than now-window. Usage never mutates the
// window; callers must not rely on it to reclaim space.
func (l *KeyLimiter) Usage(now time.Time) (used, available int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usageLocked(now)
}

// usageLocked computes usage without pruning. Caller holds mu.
func (l *KeyLimiter) usageLocked(now time.Time) (used, available int) {
	cutoff := now.Add(-l.window)
	for _, t := range l.calls {
		if t.After(cutoff) {
			used++
		}
	}
	available = l.capacity - used
	if available < 0 {
		available = 0
	}
	return used, available
}

// Status reports usage for the window ending at now.
func (l *KeyLimiter) Status(now time.Time) KeyStatus {
	used, available := l.Usage(now)
	return KeyStatus{Used: used, Available: available, Limit: l.capacity}
}
