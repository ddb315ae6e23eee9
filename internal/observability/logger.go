package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the service-wide JSON logger. Dev gets debug level;
// everything else logs at info.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	// every record carries trace/span ids when a span is active
	return slog.New(NewTraceHandler(handler))
}
