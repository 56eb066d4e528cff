package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the slog default. Development
// environments log at DEBUG so reconciliation passes are visible.
func Setup(environment string) slog.Handler {
	level := slog.LevelInfo
	if environment == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return handler
}
