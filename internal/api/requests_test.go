// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetIntParam(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		def     int
		want    int
		wantErr bool
	}{
		{"absent uses default", "/x", 20, 20, false},
		{"present", "/x?limit=50", 20, 50, false},
		{"zero", "/x?limit=0", 20, 0, false},
		{"negative passes through", "/x?limit=-3", 20, -3, false},
		{"garbage", "/x?limit=abc", 20, 0, true},
		{"float", "/x?limit=1.5", 20, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			got, err := getIntParam(r, "limit", tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getIntParam() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("getIntParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetWindowParam(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    time.Duration
		wantErr bool
	}{
		{"absent uses default", "/x", 24 * time.Hour, false},
		{"hours", "/x?window=6h", 6 * time.Hour, false},
		{"minutes", "/x?window=90m", 90 * time.Minute, false},
		{"days", "/x?window=7d", 7 * 24 * time.Hour, false},
		{"clamped to max", "/x?window=365d", maxWindow, false},
		{"zero", "/x?window=0h", 0, true},
		{"negative", "/x?window=-4h", 0, true},
		{"garbage", "/x?window=banana", 0, true},
		{"bare number", "/x?window=7", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			got, err := getWindowParam(r, "window", 24*time.Hour)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getWindowParam() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("getWindowParam() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpgradeLimiter(t *testing.T) {
	ul := newUpgradeLimiter(time.Hour, 2)

	if !ul.allow("10.0.0.1") || !ul.allow("10.0.0.1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if ul.allow("10.0.0.1") {
		t.Error("third attempt within the refill interval should be denied")
	}

	// Other IPs have their own bucket.
	if !ul.allow("10.0.0.2") {
		t.Error("fresh IP should be allowed")
	}
}

func TestUpgradeLimiterBoundsTrackedIPs(t *testing.T) {
	ul := newUpgradeLimiter(time.Hour, 1)

	for i := 0; i < maxTrackedIPs+10; i++ {
		ul.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	ul.mu.Lock()
	size := len(ul.limiters)
	ul.mu.Unlock()

	if size > maxTrackedIPs {
		t.Errorf("tracked IPs = %d, exceeds bound %d", size, maxTrackedIPs)
	}
}
