package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes the global zerolog logger based on environment configuration.
//   - level: log level string (trace, debug, info, warn, error, fatal, panic)
//   - format: "json" for production, "pretty" for human-readable dev output
//
// Returns the configured logger instance.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer

	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	} else {
		writer = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Str("service", "academy").
		Caller().
		Logger()
}

// CronAdapter exposes a zerolog logger through the Info/Error shape used by
// robfig/cron.
type CronAdapter struct {
	Log zerolog.Logger
}

// Info logs routine scheduler activity at debug level; cron is chatty.
func (a CronAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.Log.Debug().Fields(keysAndValues).Msg(msg)
}

// Error logs scheduler failures, including recovered job panics.
func (a CronAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.Log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
