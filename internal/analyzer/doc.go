// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Package analyzer computes the derived analytics served by the dashboard.
//
// Four concerns live here:
//
//   - Sentiment: a lexicon-based polarity scorer applied to a sample of
//     recent posts, aggregated into a community mood with positive, neutral,
//     and negative counts.
//
//   - Trends: word extraction from post texts (lowercased alphabetic words,
//     stop words removed) merged into an hourly frequency table, and trend
//     detection comparing the current window against the preceding one.
//
//   - Stats: cached wrappers over the database aggregates (platform
//     counters, top posters, hourly activity, submolt activity).
//
//   - Snapshots: periodic platform health samples combining counters,
//     hourly sentiment, and top words for long-range trend charts.
//
// Computations run on demand from API handlers and on schedule from the
// sync manager. Caches are invalidated after each poll cycle.
package analyzer
