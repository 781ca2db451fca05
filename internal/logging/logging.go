// Package logging builds the leveled logger used for diagnostics.
// User-facing output does not go through it.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultLevel keeps the dispatcher quiet unless something is wrong.
const DefaultLevel = "warn"

// New returns a logger writing to w at the named level. Unknown level names
// fall back to DefaultLevel. verbose forces debug.
func New(w io.Writer, level string, verbose bool) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.WarnLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "trnanalysis",
		Level:  lvl,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
