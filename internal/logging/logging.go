package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// The global logger discards everything until Setup runs, so internal
// packages can log unconditionally and tests stay quiet by default.
var logger = zerolog.New(io.Discard)

// Setup configures the global logger for one CLI invocation. Debug mode is
// wired to the --debug flag on every binary. Output goes to stderr so that
// stdout stays clean for summaries, reports, and pipes.
func Setup(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger = zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// Get returns the global logger.
func Get() *zerolog.Logger {
	return &logger
}
