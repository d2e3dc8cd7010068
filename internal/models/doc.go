// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Package models defines the shared data types used across Moltwatch.
//
// The package is organized into three groups:
//
//   - Moltbook wire types (moltbook.go): structures matching the Moltbook
//     API JSON payloads, including the recursive comment tree and the list
//     wrappers each endpoint returns.
//
//   - Persistence records (records.go): flattened row types as stored in
//     DuckDB, with author and submolt references denormalized into columns
//     and observatory timestamps (fetched_at, first_seen_at) added.
//
//   - Analytics results (analytics.go): computed aggregates served by the
//     dashboard API, such as sentiment summaries, trending words, platform
//     stats, and periodic snapshots.
//
// HTTP response envelopes (APIResponse, APIError, Metadata) live in
// api_responses.go and are shared by every dashboard endpoint.
//
// Types in this package carry no behavior beyond small accessors; all
// business logic lives in the analyzer, database, and sync packages.
package models
