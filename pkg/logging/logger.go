// Package logging wraps zerolog for the catalog, its workers and the CLI.
//
// A process-wide default logger is built from the LOG_* environment at
// startup and can be replaced with SetDefault. Loggers travel through
// contexts so that update workers and HTTP handlers log with the fields
// of the operation they serve:
//
//	ctx = logging.WithUpdateKind(ctx, "partial")
//	logging.FromContext(ctx).Info().Int("rows", n).Msg("Diff applied")
package logging

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	SetDefault(NewLoggerFromConfig(ConfigFromEnv()))
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return current.Load()
}

// SetDefault replaces the process-wide logger. The zerolog global
// logger follows so that third-party code using log.Logger agrees.
func SetDefault(logger zerolog.Logger) {
	current.Store(&logger)
	log.Logger = logger
}

// New returns a JSON logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// With starts a child context of the default logger.
func With() zerolog.Context {
	return Default().With()
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return Default().Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return Default().Info() }

// Warn starts a warn event on the default logger.
func Warn() *zerolog.Event { return Default().Warn() }

// Error starts an error event on the default logger.
func Error() *zerolog.Event { return Default().Error() }

// Err starts an error event carrying err, or an info event when err is nil.
func Err(err error) *zerolog.Event { return Default().Err(err) }
