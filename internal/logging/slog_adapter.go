// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// slogBridge forwards log/slog records to the package's zerolog backend.
// The supervisor tree is the only slog consumer in the process: suture
// reports through sutureslog, which wants an *slog.Logger, and the bridge
// keeps those lines in the same stream and format as everything else.
type slogBridge struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	prefix string
}

// NewSlogLogger returns an slog.Logger backed by the global zerolog logger.
//
//	tree := supervisor.NewTree(logging.NewSlogLogger(), cfg)
func NewSlogLogger() *slog.Logger {
	return slog.New(&slogBridge{logger: Logger()})
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return b.logger.GetLevel() <= toZerologLevel(level)
}

//nolint:gocritic // slog.Record is passed by value per the Handler interface
func (b *slogBridge) Handle(_ context.Context, rec slog.Record) error {
	event := b.logger.WithLevel(toZerologLevel(rec.Level))
	for _, attr := range b.attrs {
		event = appendAttr(event, attr, b.prefix)
	}
	rec.Attrs(func(attr slog.Attr) bool {
		event = appendAttr(event, attr, b.prefix)
		return true
	})
	event.Msg(rec.Message)
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(b.attrs)+len(attrs))
	merged = append(merged, b.attrs...)
	merged = append(merged, attrs...)
	return &slogBridge{logger: b.logger, attrs: merged, prefix: b.prefix}
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	return &slogBridge{logger: b.logger, attrs: b.attrs, prefix: joinKey(b.prefix, name)}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// appendAttr writes one slog attribute onto a zerolog event, flattening
// groups into dot-separated keys.
func appendAttr(event *zerolog.Event, attr slog.Attr, prefix string) *zerolog.Event {
	if attr.Value.Kind() == slog.KindGroup {
		p := joinKey(prefix, attr.Key)
		for _, ga := range attr.Value.Group() {
			event = appendAttr(event, ga, p)
		}
		return event
	}

	key := joinKey(prefix, attr.Key)
	switch attr.Value.Kind() {
	case slog.KindString:
		return event.Str(key, attr.Value.String())
	case slog.KindInt64:
		return event.Int64(key, attr.Value.Int64())
	case slog.KindFloat64:
		return event.Float64(key, attr.Value.Float64())
	case slog.KindBool:
		return event.Bool(key, attr.Value.Bool())
	case slog.KindDuration:
		return event.Dur(key, attr.Value.Duration())
	case slog.KindTime:
		return event.Time(key, attr.Value.Time())
	default:
		return event.Interface(key, attr.Value.Any())
	}
}

func toZerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelDebug:
		return zerolog.TraceLevel
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
