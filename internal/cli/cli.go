// Package cli implements the typeset command-line interface.
//
// Commands:
//   - render: typeset a text file into PNG pages
//   - config: print the default effect configuration as TOML
//
// All commands accept --verbose (-v) for debug logging. The library
// packages log through typewriter.Logger, which the root command points at
// a charmbracelet/log handler.
package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/typewriter"
)

// newLogger creates a logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// installLogger routes library logging through l.
func installLogger(l *log.Logger) {
	typewriter.SetLogger(slog.New(l))
}

// progress logs the elapsed time of an operation when it is done.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
