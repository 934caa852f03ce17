// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at w with a console format and returns the
// run id attached to every entry. verbose forces debug level; otherwise
// level is parsed, falling back to warn.
func Setup(w io.Writer, level string, verbose bool) string {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	runID := uuid.NewString()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
	return runID
}
