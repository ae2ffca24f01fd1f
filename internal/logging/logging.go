package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Service is attached to every record emitted through New.
const Service = "djenbridge"

// New builds a logger writing to w. JSON records are used for machine
// consumers, text records otherwise.
func New(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", Service)
}

// Init sets the package-level default slog logger on stderr.
// When resultsOnStdout is true it logs JSON so the stream stays parseable
// next to NDJSON results; otherwise it logs text.
func Init(resultsOnStdout bool, level slog.Level) {
	slog.SetDefault(New(os.Stderr, resultsOnStdout, level))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
