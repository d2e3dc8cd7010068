// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Package supervisor runs the observatory under a suture v4 tree.
//
// Layout:
//
//	moltwatch (root)
//	├── polling-layer: poll manager, websocket hub
//	└── api-layer:     http server
//
// Supervisor events are logged through the sutureslog adapter, fed by
// the application's zerolog-backed slog handler. A service that keeps
// crashing backs off per suture's failure threshold instead of spinning.
package supervisor
