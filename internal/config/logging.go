package config

import (
	"io"
	"log/slog"
	"strings"
)

// Level maps the configured log level name to a slog level.
func (s *Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the structured logger used by every component.
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	level := s.Level()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
