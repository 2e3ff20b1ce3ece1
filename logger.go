package trsgd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/trsgd/learner"
)

// Logger wraps slog.Logger with training-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRunID adds a run_id field.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", id)}
}

// WithSource adds a source field.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{Logger: l.Logger.With("source", name)}
}

// LogReport logs a progress report at info level.
func (l *Logger) LogReport(ctx context.Context, s learner.Stats) {
	l.InfoContext(ctx, "progress",
		"iter", s.Iteration,
		"size", s.Size,
		"weight", s.SumWeight,
		"step", s.Step,
		"loss", s.Loss,
		"removed", s.Removed,
	)
}

// LogSave logs a model save.
func (l *Logger) LogSave(ctx context.Context, name string, weights int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model save failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "model saved",
		"name", name,
		"weights", weights,
		"duration", d,
	)
}

// LogLoad logs a model load.
func (l *Logger) LogLoad(ctx context.Context, name string, weights int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "model loaded",
		"name", name,
		"weights", weights,
		"duration", d,
	)
}
