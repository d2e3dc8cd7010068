// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
Package websocket pushes live observatory updates to dashboard clients.

The Hub fans broadcast messages out to every connected Client. Pollers
call BroadcastJSON after storing new data; the dashboard reacts without
re-polling the REST API.

Message flow:

	sync.Manager -> Hub.BroadcastJSON -> broadcast channel -> per-client send channels

Slow clients are disconnected instead of backpressuring the pollers: a
client whose send buffer is full when a broadcast arrives is dropped.

The hub runs under suture supervision via RunWithContext and shuts down
cleanly when the supervisor cancels its context.
*/
package websocket
