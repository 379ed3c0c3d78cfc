// Package logging builds the process logger. Output goes to stderr or a
// file so it never interleaves with the terminal UI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options configures New.
type Options struct {
	Level  string // trace, debug, info, warn or error
	JSON   bool
	Output io.Writer // defaults to os.Stderr
}

// New returns the root logger named "kidquest".
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(strings.ToLower(opts.Level))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "kidquest",
		Level:      level,
		Output:     out,
		JSONFormat: opts.JSON,
	})
}
