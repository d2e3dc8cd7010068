// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package websocket

import (
	"context"
	"testing"
	"time"
)

// startHub runs the hub loop and returns a cancel func that stops it.
func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop after context cancel")
		}
	})
	return hub, cancel
}

// waitForClients polls until the hub reports the expected client count.
func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
}

// TestHubRegisterUnregister verifies lifecycle bookkeeping
func TestHubRegisterUnregister(t *testing.T) {
	hub, _ := startHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.Unregister <- client
	waitForClients(t, hub, 0)

	// Closed send channel marks the client as fully released.
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

// TestHubBroadcastDelivery verifies messages reach every registered client
func TestHubBroadcastDelivery(t *testing.T) {
	hub, _ := startHub(t)

	clients := []*Client{NewClient(hub, nil), NewClient(hub, nil)}
	for _, c := range clients {
		hub.Register <- c
	}
	waitForClients(t, hub, 2)

	hub.BroadcastJSON(MessageTypePostsUpdate, map[string]interface{}{"new_posts": 3})

	for i, c := range clients {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypePostsUpdate {
				t.Errorf("client %d got type %q, want %q", i, msg.Type, MessageTypePostsUpdate)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %d never received broadcast", i)
		}
	}
}

// TestHubDropsSlowClients verifies a client with a full buffer is disconnected
func TestHubDropsSlowClients(t *testing.T) {
	hub, _ := startHub(t)

	slow := NewClient(hub, nil)
	// Fill the send buffer so the next broadcast cannot be queued.
	for i := 0; i < cap(slow.send); i++ {
		slow.send <- Message{Type: MessageTypePing}
	}
	hub.Register <- slow
	waitForClients(t, hub, 1)

	hub.BroadcastJSON(MessageTypeStatsUpdate, nil)
	waitForClients(t, hub, 0)
}

// TestHubShutdownClosesClients verifies context cancel releases all clients
func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil)
	hub.Register <- client
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("client count after shutdown = %d, want 0", hub.GetClientCount())
	}
}

// TestBroadcastStatsUpdate verifies the convenience wrapper payload
func TestBroadcastStatsUpdate(t *testing.T) {
	hub, _ := startHub(t)

	client := NewClient(hub, nil)
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.BroadcastStatsUpdate(1200, 15)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeStatsUpdate {
			t.Fatalf("type = %q, want %q", msg.Type, MessageTypeStatsUpdate)
		}
		data, ok := msg.Data.(StatsUpdateData)
		if !ok {
			t.Fatalf("data type = %T, want StatsUpdateData", msg.Data)
		}
		if data.TotalPosts != 1200 || data.NewPosts != 15 {
			t.Errorf("data = %+v, want totals 1200/15", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("never received stats_update")
	}
}

// TestMarshalMessage verifies the wire format
func TestMarshalMessage(t *testing.T) {
	raw, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	want := `{"type":"pong","data":null}`
	if string(raw) != want {
		t.Errorf("MarshalMessage() = %s, want %s", raw, want)
	}
}
