// Package logging builds the slog logger handed to the engine and driver.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Config selects where log records go and which ones are kept.
type Config struct {
	Level  slog.Level
	Output io.Writer
}

// Flags holds the verbosity flags of the command line.
type Flags struct {
	Debug   bool
	Verbose bool
	Quiet   bool
}

// Level maps the flags to a level: debug > verbose (info) > quiet (error).
// Without flags only warnings and errors are logged.
func (f Flags) Level() slog.Level {
	switch {
	case f.Debug:
		return slog.LevelDebug
	case f.Verbose:
		return slog.LevelInfo
	case f.Quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// FromFlags returns a Config writing to stderr at the level chosen by f.
func FromFlags(f Flags) Config {
	return Config{Level: f.Level(), Output: os.Stderr}
}

// New returns a text logger for cfg with UTC timestamps.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.TimeValue(t.UTC())
				}
			}
			return a
		},
	}))
}
