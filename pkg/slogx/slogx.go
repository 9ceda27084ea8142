// Package slogx holds the small amount of glue we put around log/slog so
// every binary and library logs the same way.
package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes the base logger for a process.
type Config struct {
	Service string    // service attribute attached to every record
	Version string    // build version attribute
	Env     string    // dev, staging, prod, test
	Level   string    // debug, info, warn, error (default: info)
	Format  string    // json or text (default: json)
	Output  io.Writer // defaults to os.Stdout
}

// New builds a logger from cfg. Unknown levels fall back to info and unknown
// formats fall back to json.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(h)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	if cfg.Version != "" {
		logger = logger.With("version", cfg.Version)
	}
	if cfg.Env != "" {
		logger = logger.With("env", cfg.Env)
	}
	return logger
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard returns a logger that drops everything. Libraries use it when the
// caller did not hand them a logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
