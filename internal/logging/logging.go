// Package logging builds the application logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"todoapi/internal/config"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stderr configured from cfg.
func New(app config.AppConfig, cfg config.LogConfig) *log.Logger {
	return NewWithWriter(os.Stderr, app, cfg)
}

// NewWithWriter is New with an explicit destination. It also installs the
// logger as the slog default so library output lands in the same stream.
func NewWithWriter(w io.Writer, app config.AppConfig, cfg config.LogConfig) *log.Logger {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	formatter := log.JSONFormatter
	switch cfg.Format {
	case "text":
		formatter = log.TextFormatter
	case "json":
	default:
		if app.IsDev() {
			formatter = log.TextFormatter
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "todoapi",
	})
	logger = logger.With("env", app.Env, "version", app.Version)
	slog.SetDefault(slog.New(logger))
	return logger
}
