package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a console logger for a CLI run. Output goes to stderr so
// stdout stays free for command output.
func New(component string, verbose bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, component, verbose)
}

func NewWithWriter(w io.Writer, component string, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
