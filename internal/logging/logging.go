// Package logging builds the diagnostic logger: a text handler for the
// terminal when verbose and a JSON handler for an optional log file.
package logging

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

type Options struct {
	// Console receives human-readable records when Verbose is set.
	Console io.Writer
	Verbose bool
	// File receives every record at debug level as JSON lines. May be nil.
	File io.Writer
}

// New returns a logger fanning out to the configured sinks. With no sinks
// the logger discards everything.
func New(opts Options) *slog.Logger {
	var handlers []slog.Handler

	if opts.Verbose && opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				// terminal output already has its own timeline
				if len(groups) == 0 && a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		}))
	}
	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if len(handlers) == 0 {
		return Discard()
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
