package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// ConfigureLogger rebuilds the package logger from the validated config
// and sets the global level. Format "json" writes structured lines to
// stderr; anything else uses the console writer.
func ConfigureLogger(cfg Config) zerolog.Logger {
	if cfg.LogFormat == "json" {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	ApplyLogLevel(cfg.LogLevel)
	return logger
}

// ApplyLogLevel updates the global log level. Invalid levels are ignored;
// Validate has already rejected them for the initial config, and the config
// watcher must not crash the process on a bad edit.
func ApplyLogLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}
