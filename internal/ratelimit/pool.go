// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/metrics"
)

// ErrNoKeys is returned when a pool is constructed without any API keys.
// This is a fatal configuration error and must be surfaced at startup.
var ErrNoKeys = errors.New("ratelimit: at least one API key is required")

// fallbackSleep bounds the retry loop when no positive wait could be computed.
// That state should be unreachable while pruning is correct (an exhausted key
// always has an in-window oldest timestamp), but sleeping briefly instead of
// spinning keeps the poller alive if the invariant is ever broken.
const fallbackSleep = 100 * time.Millisecond

// PoolStatus aggregates per-key usage into one snapshot.
type PoolStatus struct {
	TotalUsed      int                  `json:"total_used"`
	TotalAvailable int                  `json:"total_available"`
	Capacity       int                  `json:"capacity"`
	PerKey         map[string]KeyStatus `json:"per_key"`
}

// KeyPool presents a single admission point over several API keys, rotating
// round-robin and minimizing wait time.
//
// The key set is fixed at construction; each key gets an independent
// KeyLimiter with the same per-key capacity. A rotation cursor marks the key
// to try first on the next acquisition and advances one past the key that
// admitted, so uniform load spreads across all keys and no key is starved.
//
// Construct one pool at startup and share it across all pollers for the
// process lifetime.
type KeyPool struct {
	mu       sync.Mutex // guards cursor and the scan
	keys     []string
	limiters map[string]*KeyLimiter
	cursor   int
	perKey   int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewKeyPool creates a pool over the given keys with a uniform calls-per-
// minute capacity per key. Returns ErrNoKeys for an empty key list.
func NewKeyPool(keys []string, callsPerMinute int) (*KeyPool, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	limiters := make(map[string]*KeyLimiter, len(keys))
	for _, key := range keys {
		limiters[key] = NewKeyLimiter(callsPerMinute)
	}

	return &KeyPool{
		keys:     append([]string(nil), keys...),
		limiters: limiters,
		perKey:   callsPerMinute,
		now:      time.Now,
		sleep:    sleepContext,
	}, nil
}

// Len returns the number of keys in the pool.
func (p *KeyPool) Len() int {
	return len(p.keys)
}

// Acquire blocks until some key has free capacity, records an admission
// against it, and returns it. Callers attach the returned key to the next
// outbound request.
//
// Acquire never rejects: capacity is enforced by waiting. The only error it
// returns is the context's, when the caller is cancelled mid-wait; in that
// case no admission was recorded.
func (p *KeyPool) Acquire(ctx context.Context) (string, error) {
	n := len(p.keys)

	for {
		p.mu.Lock()
		now := p.now()

		// Scan from the cursor for a key with free capacity.
		for i := 0; i < n; i++ {
			idx := (p.cursor + i) % n
			key := p.keys[idx]
			if p.limiters[key].TryAcquire() {
				p.cursor = (idx + 1) % n
				p.mu.Unlock()
				return key, nil
			}
		}

		// Every key is exhausted: find the minimum time until any key's
		// oldest in-window call expires. Per-key locks are taken in
		// key-slice order while the pool lock is held.
		var minSleep time.Duration
		for _, key := range p.keys {
			wait := p.limiters[key].waitUntilFree(now)
			if wait > 0 && (minSleep == 0 || wait < minSleep) {
				minSleep = wait
			}
		}
		if minSleep <= 0 {
			// Should be unreachable; see fallbackSleep.
			logging.Warn().
				Int("keys", n).
				Msg("Key pool exhausted but no positive wait computed, using fallback sleep")
			minSleep = fallbackSleep
		}

		status := p.statusAt(now)
		p.mu.Unlock()

		logging.Debug().
			Dur("sleep", minSleep).
			Int("total_used", status.TotalUsed).
			Int("total_available", status.TotalAvailable).
			Int("capacity", status.Capacity).
			Msg("All API keys exhausted, waiting for capacity")
		metrics.RateLimiterExhaustedWaits.Inc()
		metrics.RateLimiterWaitSeconds.Observe(minSleep.Seconds())

		if err := p.sleep(ctx, minSleep); err != nil {
			return "", err
		}
	}
}

// Status returns an aggregate usage snapshot across all keys plus a per-key
// breakdown. It is read-only, safe from any goroutine, and idempotent while
// no admissions occur; reading slightly stale limiter state is acceptable.
func (p *KeyPool) Status() PoolStatus {
	return p.statusAt(p.now())
}

// waitUntilFree reports how long until this key's oldest in-window admission
// leaves the window, or 0 when the key is not currently at capacity.
func (l *KeyLimiter) waitUntilFree(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) < l.capacity {
		return 0
	}
	oldest, ok := l.oldestLocked()
	if !ok {
		return 0
	}
	return l.window - now.Sub(oldest)
}

// statusAt builds the snapshot for the window ending at now.
func (p *KeyPool) statusAt(now time.Time) PoolStatus {
	status := PoolStatus{
		Capacity: p.perKey * len(p.keys),
		PerKey:   make(map[string]KeyStatus, len(p.keys)),
	}
	for _, key := range p.keys {
		ks := p.limiters[key].Status(now)
		status.PerKey[key] = ks
		status.TotalUsed += ks.Used
		status.TotalAvailable += ks.Available
	}
	metrics.RateLimiterUsed.Set(float64(status.TotalUsed))
	metrics.RateLimiterAvailable.Set(float64(status.TotalAvailable))
	return status
}
