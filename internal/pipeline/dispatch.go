package pipeline

import (
	"context"

	"github.com/charmbracelet/log"
)

// IsHelp reports whether argv asks for the catalog rather than a pipeline:
// no command at all, or -h/--help in the command position.
func IsHelp(argv []string) bool {
	if len(argv) < 2 {
		return true
	}
	return argv[1] == "--help" || argv[1] == "-h"
}

// Dispatcher runs the pipeline named by a command line.
type Dispatcher struct {
	Resolver Resolver
	Logger   *log.Logger
}

// Dispatch resolves argv[1] and runs the matching unit with argv[1:], so the
// unit sees the command token as its own argv[0]. argv[0] is the tool name.
//
// It returns ErrHelpRequested without running anything when IsHelp(argv),
// a *ResolutionError when nothing matches, and otherwise the unit's own
// error unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, argv []string) error {
	if IsHelp(argv) {
		return ErrHelpRequested
	}

	id := Identifier(argv[1])
	unit, err := d.Resolver.Resolve(id)
	if err != nil {
		return err
	}

	forwarded := argv[1:]
	loggerOrDiscard(d.Logger).Debug("dispatching", "identifier", id, "args", forwarded[1:])
	return unit.Run(ctx, forwarded)
}
