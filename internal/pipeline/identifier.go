// Package pipeline discovers pipeline units on the search path, resolves
// command names to them, and runs them.
//
// A pipeline unit is a file named pipeline_<name>.<ext> in one of the search
// directories. The extension selects the runtime used to invoke it.
package pipeline

import "strings"

// Prefix is prepended to a normalized command token to form its identifier.
const Prefix = "pipeline_"

// Normalize replaces every hyphen in a command token with an underscore.
func Normalize(token string) string {
	return strings.ReplaceAll(token, "-", "_")
}

// Identifier returns the pipeline identifier for a command token,
// e.g. "trna-qc" becomes "pipeline_trna_qc".
func Identifier(token string) string {
	return Prefix + Normalize(token)
}

// CommandName strips the identifier prefix, giving the name a user types.
func CommandName(identifier string) string {
	return strings.TrimPrefix(identifier, Prefix)
}
