// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a logger at the given level. Unknown levels fall back to info.
func New(level string) zerolog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter builds a logger writing to w.
func NewWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
