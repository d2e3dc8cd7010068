// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Package api serves the read-only dashboard HTTP API over chi.
//
// All endpoints are GETs returning the models.APIResponse envelope,
// encoded with goccy/go-json and cached client-side via weak ETags.
// Route groups carry their own httprate budgets: directory listings
// get the default budget, analytics endpoints a generous one (they are
// cheap cached reads), websocket upgrades a tight one.
//
// The package never writes to the database and never calls Moltbook;
// it reads what the pollers stored and what the analyzer derived.
package api
