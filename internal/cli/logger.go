package cli

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"codeberg.org/snonux/cargo-check-i18n/internal"
)

// NewLogger returns a text logger writing to w. Only warnings and errors are
// shown unless verbose is set. Every record carries the run's id.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		"service", internal.ToolName,
		"run_id", uuid.NewString(),
	)
}
