package app

import (
	"io"
	"log/slog"
)

// parseLevel maps a level name to its slog level. Unknown names fall back
// to info rather than erroring; logging config should never abort a run.
func parseLevel(name string) slog.Level {
	switch name {
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

// newLogger builds the logger carried through the run via ctxlog. It is a
// plain instance, not the process default, so tests can run apps with
// isolated log sinks.
func newLogger(levelStr, formatStr string, logW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(levelStr)}

	var handler slog.Handler = slog.NewTextHandler(logW, opts)
	if formatStr == "json" {
		handler = slog.NewJSONHandler(logW, opts)
	}

	return slog.New(handler)
}
