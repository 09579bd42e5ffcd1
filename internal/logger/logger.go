package logger

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

const envProd = "prod"

// New returns a slog logger backed by charmbracelet/log. Production logs are
// JSON; everything else uses the coloured text formatter. An unknown level
// falls back to info.
func New(w io.Writer, env, level string) *slog.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	formatter := log.TextFormatter
	if env == envProd {
		formatter = log.JSONFormatter
	}

	h := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Formatter:       formatter,
	})
	return slog.New(h)
}
