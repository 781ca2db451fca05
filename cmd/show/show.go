// Package show provides the "trnanalysis show" command.
package show

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acribbs/trnanalysis/internal/app"
	"github.com/acribbs/trnanalysis/internal/output"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// Details describes how a command resolves.
type Details struct {
	Entry       *pipeline.Entry    `json:"pipeline"`
	Manifest    *pipeline.Manifest `json:"manifest,omitempty"`
	CommandLine []string           `json:"command_line"`
	Shadowed    []string           `json:"shadowed,omitempty"`
	Builtin     bool               `json:"builtin"`
}

// NewCommand creates the "show" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <command>",
		Short: "Show which file a command runs and how",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			a, err := app.FromCommand(cmd)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return a.Discover().Commands(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			d, err := Describe(a, args[0])
			if err != nil {
				if jsonOut {
					output.FprintJSONError(a.Out(), "show", err, output.ExitUserError)
				}
				return err
			}
			for _, name := range app.BuiltinNames(cmd.Root()) {
				if name == pipeline.CommandName(d.Entry.Identifier) {
					d.Builtin = true
				}
			}

			if jsonOut {
				return output.FprintJSON(a.Out(), "show", d)
			}
			printDetails(a.Out(), d)
			return nil
		},
	}
}

// Describe resolves token the way the dispatcher would and collects what
// is known about the result.
func Describe(a *app.App, token string) (*Details, error) {
	id := pipeline.Identifier(token)
	e, err := a.Resolver().Lookup(id)
	if err != nil {
		return nil, err
	}

	unit := &pipeline.ScriptUnit{Entry: *e}
	d := &Details{
		Entry:       e,
		Manifest:    e.Manifest,
		CommandLine: unit.Command(context.Background(), []string{token}).Args,
	}

	opts := a.Config.DiscoverOptions(a.Logger)
	opts.KeepDuplicates = true
	for _, other := range pipeline.Discover(a.SearchPath(), opts).Entries {
		if other.Identifier == id && other.Path != e.Path {
			d.Shadowed = append(d.Shadowed, other.Path)
		}
	}
	return d, nil
}

func printDetails(w io.Writer, d *Details) {
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	e := d.Entry
	fmt.Fprintf(w, "%s\n\n", bold(e.Command))
	fmt.Fprintf(w, "  Identifier:   %s\n", e.Identifier)
	fmt.Fprintf(w, "  Path:         %s\n", e.Path)
	interp := e.Runtime.Interpreter
	if interp == "" {
		interp = "(run directly)"
	}
	fmt.Fprintf(w, "  Interpreter:  %s\n", interp)
	fmt.Fprintf(w, "  Command line: %s <args>\n", strings.Join(d.CommandLine, " "))

	if m := d.Manifest; m != nil {
		fmt.Fprintln(w)
		if m.Description != "" {
			fmt.Fprintf(w, "  Description:  %s\n", m.Description)
		}
		if m.Version != "" {
			fmt.Fprintf(w, "  Version:      %s\n", m.Version)
		}
		if m.Author != "" {
			fmt.Fprintf(w, "  Author:       %s\n", m.Author)
		}
		fmt.Fprintf(w, "  Config:       %s\n", pipeline.ManifestPath(e.Dir, e.Identifier))
	}

	if len(d.Shadowed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Also found (not used):")
		for _, p := range d.Shadowed {
			fmt.Fprintf(w, "    %s\n", p)
		}
	}
	if d.Builtin {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s the built-in %q command takes precedence; this pipeline cannot be run by name\n",
			yellow("!"), e.Command)
	}
}
