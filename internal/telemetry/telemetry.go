// Package telemetry sets up the structured logger every binary in this
// module shares. It replaces the teacher's bare log.Println calls with
// zerolog so the tile-join driver can attach structured fields (tile
// id, bucket sizes, pair counts) instead of formatting them by hand.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a logger that writes to stderr (stdout is reserved for
// join output) at the given level. An unrecognized level name falls
// back to "info".
func New(level string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit writer in place of stderr.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
