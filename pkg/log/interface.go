// Package log provides the structured logging interface used across the
// autoprice pipeline.
//
// The interface is slog-compatible so that backends can be swapped; the
// default backend is zerolog (see ZerologProvider). Stage code obtains a
// named logger and attaches the standard attribute keys from attributes.go:
//
//	logger := log.GetLoggerWithName("impute.knn")
//	logger.Info("imputation completed",
//	    log.OperationKey, log.OperationTransform,
//	    log.SamplesKey, n,
//	    log.ColumnKey, "odometer",
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. When the first field passed to
// Error is an error value it is logged under the "error" key together with
// its stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information such as per-iteration loss.
	Debug(msg string, fields ...any)

	// Info logs general operational information (stage start/end, row counts).
	Info(msg string, fields ...any)

	// Warn logs recoverable conditions such as numeric degeneracy fallbacks.
	Warn(msg string, fields ...any)

	// Error logs a failed operation.
	//
	//	logger.Error("pipeline failed", err, log.StageKey, "select")
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
