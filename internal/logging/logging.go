// Package logging sets up the zerolog logger. The terminal belongs to the
// UI, so output goes to a file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// New returns a logger writing to w at level. Debug and trace levels get
// the human-readable console format.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if level <= zerolog.DebugLevel {
		cw := zerolog.NewConsoleWriter()
		cw.Out = w
		cw.NoColor = true
		cw.TimeFormat = time.DateTime
		w = cw
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// Open opens path for appending and returns a logger writing to it along
// with a close function. When the file cannot be opened the logger is a
// no-op and err says why.
func Open(path string, level zerolog.Level) (zerolog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() error { return nil }, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), func() error { return nil }, err
	}
	l := New(f, level)
	l.Info().Str("level", level.String()).Msg("initialized logger")
	return l, f.Close, nil
}
