package semtok

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with semtok-specific context.
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

// WithModel adds the encoder model name to the logger.
func (l *Logger) WithModel(model string) *Logger {
	return &Logger{
		Logger: l.Logger.With("model", model),
	}
}

// WithLayer adds the hidden-layer index to the logger.
func (l *Logger) WithLayer(layer int) *Logger {
	return &Logger{
		Logger: l.Logger.With("layer", layer),
	}
}

// LogEmbed logs an embedding extraction.
func (l *Logger) LogEmbed(ctx context.Context, waveforms, frames int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "embed failed",
			"waveforms", waveforms,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "embed completed",
			"waveforms", waveforms,
			"frames", frames,
		)
	}
}

// LogTokenize logs a tokenization.
func (l *Logger) LogTokenize(ctx context.Context, waveforms, tokens int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tokenize failed",
			"waveforms", waveforms,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "tokenize completed",
			"waveforms", waveforms,
			"tokens", tokens,
		)
	}
}

// LogCodebookLoad logs a codebook load attempt.
func (l *Logger) LogCodebookLoad(ctx context.Context, name string, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "codebook load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "codebook loaded",
			"name", name,
			"clusters", clusters,
		)
	}
}
