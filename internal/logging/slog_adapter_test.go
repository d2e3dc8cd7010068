// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedBridge(buf *bytes.Buffer, level zerolog.Level) *slog.Logger {
	return slog.New(&slogBridge{logger: zerolog.New(buf).Level(level)})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	line := map[string]interface{}{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return line
}

func TestSlogBridgeLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		log       func(l *slog.Logger)
		wantLevel string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("m") }, "debug"},
		{"info", func(l *slog.Logger) { l.Info("m") }, "info"},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, "warn"},
		{"error", func(l *slog.Logger) { l.Error("m") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.log(newBufferedBridge(&buf, zerolog.TraceLevel))

			line := decodeLine(t, &buf)
			if line["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", line["level"], tt.wantLevel)
			}
		})
	}
}

func TestSlogBridgeEnabled(t *testing.T) {
	t.Parallel()

	bridge := &slogBridge{logger: zerolog.New(nil).Level(zerolog.InfoLevel)}

	if bridge.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled on an info-level logger")
	}
	if !bridge.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn disabled on an info-level logger")
	}
}

func TestSlogBridgeRespectsLoggerLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newBufferedBridge(&buf, zerolog.WarnLevel)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written on a warn-level logger: %s", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn line missing: %s", buf.String())
	}
}

func TestSlogBridgeAttrKinds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newBufferedBridge(&buf, zerolog.TraceLevel)

	logger.Info("service restarting",
		slog.String("service", "poll-manager"),
		slog.Int("restarts", 3),
		slog.Float64("failures", 2.5),
		slog.Bool("terminal", false),
		slog.Duration("backoff", 15*time.Second),
	)

	line := decodeLine(t, &buf)
	if line["service"] != "poll-manager" {
		t.Errorf("service = %v", line["service"])
	}
	if line["restarts"] != float64(3) {
		t.Errorf("restarts = %v", line["restarts"])
	}
	if line["failures"] != 2.5 {
		t.Errorf("failures = %v", line["failures"])
	}
	if line["terminal"] != false {
		t.Errorf("terminal = %v", line["terminal"])
	}
}

func TestSlogBridgeWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newBufferedBridge(&buf, zerolog.TraceLevel).With("supervisor", "moltwatch")

	logger.Info("started")

	line := decodeLine(t, &buf)
	if line["supervisor"] != "moltwatch" {
		t.Errorf("supervisor = %v, want moltwatch", line["supervisor"])
	}
}

func TestSlogBridgeGroupsFlattenToDottedKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newBufferedBridge(&buf, zerolog.TraceLevel).WithGroup("tree")

	logger.Info("m", slog.Group("service", slog.String("name", "api-layer")))

	line := decodeLine(t, &buf)
	if line["tree.service.name"] != "api-layer" {
		t.Errorf("tree.service.name = %v, want api-layer", line["tree.service.name"])
	}
}

func TestSlogBridgeEmptyGroupIsNoop(t *testing.T) {
	t.Parallel()

	bridge := &slogBridge{logger: zerolog.New(nil)}
	if got := bridge.WithGroup(""); got != slog.Handler(bridge) {
		t.Error("WithGroup(\"\") returned a new handler")
	}
}

func TestToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		if got := toZerologLevel(tt.in); got != tt.want {
			t.Errorf("toZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	logger := NewSlogLogger()
	if logger == nil {
		t.Fatal("NewSlogLogger() = nil")
	}
	// Must not panic when driven the way sutureslog drives it.
	logger.Info("supervisor event", slog.String("service", "poll-manager"))
}
