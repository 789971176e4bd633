package fatio

import (
	"log/slog"
	"os"

	"github.com/hupe1980/fatio/driver"
)

// Logger wraps slog.Logger with fatio-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs an open or create operation.
func (l *Logger) LogOpen(mode driver.Mode, size int64, err error) {
	if err != nil {
		l.Error("open failed",
			"mode", mode.String(),
			"error", err,
		)
	} else {
		l.Debug("file opened",
			"mode", mode.String(),
			"size", size,
		)
	}
}

// LogClose logs a close operation. A flush error at close time has already
// been absorbed and is reported as a warning.
func (l *Logger) LogClose(size int64, err error) {
	if err != nil {
		l.Warn("close completed with errors",
			"size", size,
			"error", err,
		)
	} else {
		l.Debug("file closed",
			"size", size,
		)
	}
}

// LogFlush logs a write-back of the cache window.
func (l *Logger) LogFlush(offset int64, bytes int, err error) {
	if err != nil {
		l.Error("flush failed",
			"offset", offset,
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.Debug("flush completed",
			"offset", offset,
			"bytes", bytes,
		)
	}
}

// LogEvict logs that the cache window moved.
func (l *Logger) LogEvict(from, to int64, capacity int) {
	l.Debug("cache window moved",
		"from", from,
		"to", to,
		"capacity", capacity,
	)
}

// LogTruncate logs a size change.
func (l *Logger) LogTruncate(oldSize, newSize int64, err error) {
	if err != nil {
		l.Error("truncate failed",
			"old_size", oldSize,
			"new_size", newSize,
			"error", err,
		)
	} else {
		l.Debug("truncate completed",
			"old_size", oldSize,
			"new_size", newSize,
		)
	}
}
