package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger builds the process logger from the Log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)).With("app", c.App.Name)
	}

	return slog.New(slog.NewTextHandler(w, opts)).With("app", c.App.Name)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}

	return level, nil
}
