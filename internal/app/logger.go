package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output feeds log
// aggregation in deployed environments; the text handler is for
// terminals. Non-production runs log at debug so posting and sync
// flows are traceable locally.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
