// Package logging builds the zerolog loggers used across the client and the
// development backend.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/config"
)

// New returns a logger writing to w at cfg.Level. Unknown levels fall back
// to info.
func New(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ErrorLogger records failed session operations.
type ErrorLogger struct {
	logger zerolog.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger zerolog.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// LogError implements the session's ErrorLogger port.
func (l *ErrorLogger) LogError(context string, err error) {
	l.logger.Error().Err(err).Str("operation", context).Msg("operation failed")
}
