// Package logging builds the server's structured logger, following the
// slog-based construction the wider example pack uses for its own
// services.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Options customize logger construction.
type Options struct {
	Level  slog.Level
	Format string // "json" (default) or "text"/"console"
}

// New returns a configured *slog.Logger. Every per-connection and security
// event the server logs goes through this logger with an "event" attribute
// naming what happened, so the log stream stays greppable even though
// records are structured underneath.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}

	return slog.New(handler)
}

// ParseLevel maps a config string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
