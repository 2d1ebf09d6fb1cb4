package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger.
// JSON output on stdout; level can be raised via CDC_LOG_LEVEL=debug.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("CDC_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
