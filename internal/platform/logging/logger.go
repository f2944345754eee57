// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/golang-cz/devslog"

	"blog_backend/internal/platform/config"
)

// New creates a slog.Logger writing to w.
//
// Supported formats: "json" (default), "text" and "dev" (colourised devslog output).
// Every record carries the service name and environment.
func New(w io.Writer, cfg config.LoggingConfig, env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "dev":
		opts.AddSource = true
		handler = devslog.NewHandler(w, &devslog.Options{
			HandlerOptions:  opts,
			NewLineAfterLog: false,
		})
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "blog_backend"),
		slog.String("env", env),
	})

	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
