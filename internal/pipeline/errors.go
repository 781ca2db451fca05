package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHelpRequested is returned by Dispatch when argv carries no command or
// a help flag. Callers print the usage text and catalog.
var ErrHelpRequested = errors.New("help requested")

// ResolutionError means no unit on the search path matches Identifier.
type ResolutionError struct {
	Identifier string
	SearchPath SearchPath
}

func (e *ResolutionError) Error() string {
	searched := "none"
	if len(e.SearchPath) > 0 {
		searched = strings.Join(e.SearchPath, ", ")
	}
	return fmt.Sprintf("no module named '%s' (searched: %s)", e.Identifier, searched)
}

// ExitError carries the non-zero exit status of a unit. The dispatcher
// exits with Code and prints nothing of its own.
type ExitError struct {
	Identifier string
	Code       int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Identifier, e.Code)
}

// StartError means the unit's process could not be started, typically
// because its interpreter is not installed.
type StartError struct {
	Identifier string
	Err        error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("could not start %s: %v", e.Identifier, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }
