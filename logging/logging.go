// Package logging builds the engine's structured logger: a level-
// configurable log/slog.Logger writing JSON, the idiom this codebase's
// services use for observability (see rezkam-mono's otel.go, which wires
// the same slog.NewJSONHandler construction this package follows).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New builds a slog.Logger writing JSON to stdout at the given level
// ("debug", "info", "warn", "error"; unrecognised values default to info).
func New(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
