// Package applog builds the process's structured logger. Grounded on
// tphakala-birdnet-go's internal/datastore/logger.go adapter pattern
// (a package-level *slog.Logger behind a dynamic slog.LevelVar,
// initialized once), simplified to a single constructor since this
// service has one logger, not one per subsystem.
package applog

import (
	"log/slog"
	"os"
)

// New builds a slog.Logger at the given spec.md §6 log_level, writing
// JSON records to w. Logs go to stderr in the CLI and RPC server
// entrypoints so stdout stays reserved for the RPC transport's
// newline-delimited JSON responses.
func New(level string, w *os.File) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lv := new(slog.LevelVar)
	lv.Set(parseLevel(level))
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	return slog.New(handler)
}

// parseLevel maps spec.md §6's trace/debug/info/warn/error vocabulary
// onto slog's four levels; trace has no slog equivalent and maps to
// Debug.
func parseLevel(level string) slog.Level {
	switch level {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
