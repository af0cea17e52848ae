// Package logging builds the structured logger shared by the daemon and CLI.
//
// Records go through log/slog so packages only depend on *slog.Logger; the
// handler is charmbracelet/log, which renders timestamped, leveled lines.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// TimeFormat is used for every log line, e.g. "14:32:01.45".
const TimeFormat = "15:04:05.00"

// ParseLevel accepts debug, info, warn or error. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return log.InfoLevel, nil
	}
	switch s {
	case "debug", "info", "warn", "error":
		return log.ParseLevel(s)
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// New returns a slog logger writing to w at level. Unknown levels fall back
// to info.
func New(w io.Writer, level string) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return slog.New(NewHandler(w, lvl))
}

// NewHandler returns the charmbracelet handler with the shared formatting.
func NewHandler(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           level,
	})
}

// Component returns logger scoped to a named component. A nil logger yields
// a scoped slog.Default().
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}
