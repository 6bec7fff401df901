package classanno

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/classanno/artifact"
	"github.com/hupe1980/classanno/index"
)

// Logger wraps slog.Logger with classanno-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithHandle adds the artifact location and class fields to the logger.
func (l *Logger) WithHandle(h artifact.Handle) *Logger {
	return &Logger{
		Logger: l.Logger.With("location", h.Location, "class", h.ClassName),
	}
}

// LogScan logs the scan of one artifact.
func (l *Logger) LogScan(ctx context.Context, h artifact.Handle, ix *index.Index, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"location", h.Location,
			"class", h.ClassName,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "scan completed",
		"location", h.Location,
		"class", h.ClassName,
		"members", ix.Members(),
		"signatures", ix.Len(),
		"elapsed", elapsed,
	)
}

// LogResolve logs a container that could not be mapped to an artifact.
func (l *Logger) LogResolve(ctx context.Context, container string, err error) {
	l.DebugContext(ctx, "container not resolved",
		"container", container,
		"error", err,
	)
}

// LogPreload logs the end of a preload.
func (l *Logger) LogPreload(ctx context.Context, containers int, elapsed time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "preload failed",
			"containers", containers,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "preload completed",
		"containers", containers,
		"elapsed", elapsed,
	)
}
