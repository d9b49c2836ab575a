// Package logging configures the structured logger and terminal styles used by cssprite.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) *slog.Logger {
	return InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo is InitLogger writing to w instead of stderr.
func InitLoggerTo(w io.Writer, level, format string) *slog.Logger {
	// Parse log level
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
	return Logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithSet returns a logger with the sprite set field.
func WithSet(logger *slog.Logger, set string) *slog.Logger {
	return logger.With("set", set)
}

// WithBuild returns a logger with the build_id field.
func WithBuild(logger *slog.Logger, buildID string) *slog.Logger {
	return logger.With("build_id", buildID)
}
