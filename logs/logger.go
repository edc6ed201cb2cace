// Package logs builds the structured logger used by the saispe command.
package logs

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects where log records go.
type Options struct {
	// Terminal receives human-readable text records. Nil disables it.
	Terminal io.Writer
	// File receives JSON records at debug level regardless of Verbose.
	// Nil disables it.
	File io.Writer
	// Verbose lowers the terminal level from warn to debug.
	Verbose bool
}

// New returns a logger that fans every record out to the configured sinks.
func New(opts Options) *slog.Logger {
	var handlers []slog.Handler

	if opts.Terminal != nil {
		level := slog.LevelWarn
		if opts.Verbose {
			level = slog.LevelDebug
		}
		handlers = append(handlers, slog.NewTextHandler(
			opts.Terminal,
			&slog.HandlerOptions{
				Level: level,
			},
		))
	}

	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(
			opts.File,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		))
	}

	if len(handlers) == 0 {
		return Discard()
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
