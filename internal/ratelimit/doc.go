// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Package ratelimit implements the key-rotating rate limiter that gates every
// outbound Moltbook API call.
//
// The Moltbook API enforces a fixed calls-per-minute budget per API key. To
// sustain a higher aggregate poll rate, Moltwatch holds several keys and
// rotates across them. This package provides:
//
//   - KeyLimiter: a sliding-window limiter for a single key. It records the
//     admission timestamp of each call and admits a new call only while fewer
//     than the configured capacity fall inside the trailing 60-second window.
//   - KeyPool: the admission point used by the API client. It scans keys in
//     round-robin order, admits on the first key with free capacity, and
//     otherwise sleeps for the minimum time until any key frees up.
//
// Capacity is enforced by waiting, never by rejection: KeyPool.Acquire blocks
// (cooperatively, respecting context cancellation) until a key is available.
// No call is ever dropped at this layer.
//
// # Concurrency
//
// Many poller goroutines call Acquire concurrently. Each KeyLimiter guards its
// timestamp window with its own mutex so that prune+check+append is a single
// critical section; the pool guards the rotation cursor and scan with a
// separate mutex. Lock ordering is fixed: pool mutex first, then per-key
// mutexes in key-slice order.
//
// # Usage
//
//	pool, err := ratelimit.NewKeyPool(cfg.Moltbook.APIKeys, cfg.Moltbook.RateLimit)
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Cannot build key pool")
//	}
//	key, err := pool.Acquire(ctx)  // blocks until a key has budget
//	req.Header.Set("Authorization", "Bearer "+key)
//
// Pool state lives only in memory for the process lifetime; limits are not
// persisted across restarts and there is no cross-process coordination.
package ratelimit
