package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured JSON logger. Level is fixed at
// Info; debug logging is not worth a config knob here.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}
