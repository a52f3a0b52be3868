// Package log defines the public logging interface used across the
// stream-block runtime. Mirrors common structured-logging patterns
// (slog-shaped) so callers can plug in their own implementation.
package log

import (
	"context"
	"log/slog"
)

// Logger defines the public interface for logging operations within the
// runtime. Implementations must be safe for concurrent use.
type Logger interface {
	// Debugf logs a formatted message at the DEBUG level.
	Debugf(format string, args ...interface{})
	// Infof logs a formatted message at the INFO level.
	Infof(format string, args ...interface{})
	// Warnf logs a formatted message at the WARN level.
	Warnf(format string, args ...interface{})
	// Errorf logs a formatted message at the ERROR level.
	Errorf(format string, args ...interface{})

	// Log logs a message at the given slog.Level with key-value attributes.
	Log(level slog.Level, msg string, args ...interface{})
	// LogCtx is like Log but may attach context information (e.g. trace IDs).
	LogCtx(ctx context.Context, level slog.Level, msg string, args ...interface{})

	// With returns a new Logger with the given attributes added to every
	// subsequent entry.
	With(args ...interface{}) Logger
	// IsEnabled reports whether the logger would emit at the given level.
	IsEnabled(level slog.Level) bool
}
