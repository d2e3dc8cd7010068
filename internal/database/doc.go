// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Package database provides the DuckDB persistence layer for the
// observatory.
//
// The schema holds the raw material collected by the pollers (posts,
// comments, agents, submolts) plus two derived tables: word_frequency with
// hourly word counts feeding trend detection, and snapshots with periodic
// platform health samples.
//
// Write semantics follow the poller's needs:
//
//   - Posts are upserted; only the mutable fields (score, comment count,
//     pinned flag) are refreshed on revisits.
//   - Comments are insert-only; the API's reply trees are flattened with
//     parent_id preserving nesting.
//   - Agents and submolts are ensured before the rows that reference them,
//     starting minimal from embedded author objects and filled in by the
//     profile poller.
//
// All operations take a context and fall back to a 30-second timeout when
// none carries a deadline. Query latency and errors are recorded in the
// metrics package per operation and table.
package database
