// Package cmd contains all CLI commands for the trnanalysis binary.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acribbs/trnanalysis/cmd/completion"
	cmdconfig "github.com/acribbs/trnanalysis/cmd/config"
	"github.com/acribbs/trnanalysis/cmd/doctor"
	"github.com/acribbs/trnanalysis/cmd/list"
	cmdshell "github.com/acribbs/trnanalysis/cmd/shell"
	"github.com/acribbs/trnanalysis/cmd/show"
	"github.com/acribbs/trnanalysis/cmd/version"
	"github.com/acribbs/trnanalysis/internal/app"
	"github.com/acribbs/trnanalysis/internal/output"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

const usage = `trnanalysis - tRNA analysis workflows

To run a workflow, type:

    trnanalysis trna [workflow options] [workflow arguments]

For this message and a list of available workflows, type:

    trnanalysis --help

To get help for a specific workflow, type:

    trnanalysis trna --help`

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
//
// Anything that is not a registered subcommand is dispatched to the pipeline
// of the same name, with flag parsing left to the pipeline.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:                "trnanalysis [command] [command args...]",
		Short:              "Dispatcher for the tRNA analysis workflows",
		Long:               usage,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(app.Options{Stdio: app.StdioFor(cmd)})
			if err != nil {
				return err
			}

			argv := append([]string{cmd.Root().Name()}, args...)
			err = a.Dispatcher().Dispatch(cmd.Context(), argv)
			if errors.Is(err, pipeline.ErrHelpRequested) {
				return printHelp(cmd.OutOrStdout(), cmd.Root(), a)
			}
			return err
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			a, err := app.New(app.Options{Stdio: app.StdioFor(cmd)})
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			var names []string
			for _, name := range a.Discover().Commands() {
				if strings.HasPrefix(name, toComplete) {
					names = append(names, name)
				}
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
	}

	// Persistent flags apply to the built-in commands only; pipelines parse their own.
	rootCmd.PersistentFlags().Bool("json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable ANSI color output")

	rootCmd.AddCommand(list.NewCommand())
	rootCmd.AddCommand(show.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			defaultHelp(cmd, args)
			return
		}
		a, err := app.New(app.Options{Stdio: app.StdioFor(cmd)})
		if err != nil {
			output.FwriteError(cmd.ErrOrStderr(), "%s", err)
			return
		}
		if err := printHelp(cmd.OutOrStdout(), rootCmd, a); err != nil {
			output.FwriteError(cmd.ErrOrStderr(), "%s", err)
		}
	})

	cmdshell.NewRoot = NewRootCommand

	return rootCmd
}

// printHelp writes the usage text, the management commands and the
// pipeline catalog.
func printHelp(w io.Writer, root *cobra.Command, a *app.App) error {
	fmt.Fprintln(w, root.Long)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Management commands:")
	for _, c := range root.Commands() {
		if c.Hidden || c.Name() == "help" {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", c.Name(), c.Short)
	}
	fmt.Fprintln(w)

	cat := a.Discover()
	if len(cat.Entries) == 0 {
		fmt.Fprintf(w, "No pipelines found (searched: %s)\n", strings.Join(cat.SearchPath, ", "))
		return nil
	}
	fmt.Fprintln(w, "Available pipelines:")
	_, err := fmt.Fprintln(w, a.FormatCatalog(cat))
	return err
}

// ExitCode maps an error from the root command to a process exit status,
// printing the error to w unless it is a pipeline's own non-zero exit.
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return output.ExitOK
	}

	var exitErr *pipeline.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	output.FwriteError(w, "%s", err)

	var startErr *pipeline.StartError
	if errors.As(err, &startErr) {
		return output.ExitSystemError
	}
	return output.ExitUserError
}

// Execute runs the root command and exits with the resulting status.
func Execute() {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	os.Exit(ExitCode(err, os.Stderr))
}
