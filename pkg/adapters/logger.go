// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package adapters provides the pluggable logging interface used across
// the tool.
package adapters

import (
	"context"
	"log/slog"
	"os"
)

// Field is a structured logging key-value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the logging interface the transition pipeline writes to.
// The default implementation wraps slog; tests use the no-op logger.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// WithFields returns a Logger that stamps the given fields on every
	// entry.
	WithFields(fields ...Field) Logger
}

type slogLogger struct {
	logger *slog.Logger
	fields []Field
}

// NewLogger creates a Logger writing text lines to stderr at the given
// level. Reports go to stdout, logs to stderr, so output stays pipeable.
func NewLogger(level slog.Level) Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &slogLogger{logger: slog.New(handler)}
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &slogLogger{logger: l.logger, fields: merged}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields))
	for _, f := range l.fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// NoOpLogger discards all messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that drops everything.
func NewNoOpLogger() Logger { return NoOpLogger{} }

func (NoOpLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (NoOpLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (NoOpLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (NoOpLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (l NoOpLogger) WithFields(fields ...Field) Logger                    { return l }
