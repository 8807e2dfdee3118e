package statclust

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with statclust-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogNormalize logs a standardization pass.
func (l *Logger) LogNormalize(ctx context.Context, rows, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "normalize failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "normalize completed",
			"rows", rows,
			"dimension", dimension,
		)
	}
}

// LogCluster logs a k-means run.
func (l *Logger) LogCluster(ctx context.Context, k, iterations int, converged bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cluster failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cluster completed",
			"k", k,
			"iterations", iterations,
			"converged", converged,
		)
	}
}

// LogSweep logs a parameter sweep over several cluster counts.
func (l *Logger) LogSweep(ctx context.Context, runs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sweep failed",
			"runs", runs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sweep completed",
			"runs", runs,
		)
	}
}

// LogSave logs a snapshot write.
func (l *Logger) LogSave(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}

// LogLoad logs a snapshot read.
func (l *Logger) LogLoad(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"name", name,
		)
	}
}
