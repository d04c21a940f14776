// Package logger builds the zerolog logger shared by both front-ends.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to stdout. See NewWithWriter.
func New(env, level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, env, level, format)
}

// NewWithWriter builds a logger for the given environment.
//
// Development (dev): human-readable console output at DEBUG level.
// Staging: JSON at DEBUG. Production (prod): JSON at INFO.
//
// A non-empty level or format overrides the environment's default; an
// unparsable level falls back to info.
func NewWithWriter(out io.Writer, env, level, format string) zerolog.Logger {
	defLevel, defFormat := defaults(env)
	if level == "" {
		level = defLevel
	}
	if format == "" {
		format = defFormat
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	w := out
	if format == "pretty" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func defaults(env string) (level, format string) {
	switch env {
	case "prod":
		return "info", "json"
	case "staging":
		return "debug", "json"
	default:
		return "debug", "pretty"
	}
}
