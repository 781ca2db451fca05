// Package output provides formatting utilities for CLI output.
package output

import (
	"fmt"
	"io"
)

// FwriteError writes an error message to w.
func FwriteError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}
