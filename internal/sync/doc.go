// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
Package sync collects data from the Moltbook API into the local database.

It has three layers:

  - MoltbookClient: HTTP client with per-request key rotation through the
    rate limit pool, 429 retry with backoff, and Retry-After support.
    CircuitBreakerClient wraps it so sustained API failures stop generating
    doomed requests.
  - Processor: turns API payloads into idempotent database writes. New
    posts are inserted with their author and submolt ensured first;
    known posts only get score, comment count, and pin state refreshed.
  - Manager: runs the pollers (posts, comments, agents, submolts,
    snapshot) on independent tickers and notifies the dashboard over
    WebSocket when new data lands.

The observatory never writes to Moltbook. Every request is a GET.
*/
package sync
