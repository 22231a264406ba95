// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the leveled, structured logger used across
// the rule parser and its CLI front-end.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around log/slog, giving every caller the
// same four-level, key-value call shape regardless of which handler
// backs it (text, JSON, or a syslog-forwarding handler).
type Logger struct {
	inner *slog.Logger
	w     io.Writer
	level string
	json  bool
}

// New creates a Logger writing to w at the given level. level accepts
// the usual slog level names ("debug", "info", "warn", "error");
// unrecognized names default to "info".
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return &Logger{inner: slog.New(slog.NewTextHandler(w, opts)), w: w, level: level}
}

// NewJSON is like New but emits JSON lines, useful when log output is
// shipped to a collector rather than read by a human.
func NewJSON(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return &Logger{inner: slog.New(slog.NewJSONHandler(w, opts)), w: w, level: level, json: true}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, kv ...any) { l.inner.Debug(msg, kv...) }

// Info logs at info level.
func (l *Logger) Info(msg string, kv ...any) { l.inner.Info(msg, kv...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, kv ...any) { l.inner.Warn(msg, kv...) }

// Error logs at error level.
func (l *Logger) Error(msg string, kv ...any) { l.inner.Error(msg, kv...) }

// With returns a Logger that prepends kv to every subsequent log call,
// used to scope a logger to a parse session (gid/sid/session id).
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{inner: l.inner.With(kv...), w: l.w, level: l.level, json: l.json}
}

// AddWriter returns a Logger that duplicates every record to extra in
// addition to the receiver's own destination, used to mirror parse
// diagnostics to a syslog sink alongside the primary handler.
func (l *Logger) AddWriter(extra io.Writer) *Logger {
	if extra == nil {
		return l
	}
	fanout := io.MultiWriter(l.w, extra)
	if l.json {
		return NewJSON(fanout, l.level)
	}
	return New(fanout, l.level)
}
