// Package shell provides the "trnanalysis shell" interactive REPL command.
package shell

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/acribbs/trnanalysis/internal/app"
	"github.com/acribbs/trnanalysis/internal/config"
	shellpkg "github.com/acribbs/trnanalysis/internal/shell"
)

// NewRoot builds a fresh root command for each line run in the shell. It is
// set by the cmd package to avoid an import cycle.
var NewRoot func() *cobra.Command

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var evalCmd string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive trnanalysis shell",
		Long: `Start an interactive REPL with history and tab completion.

Each line is run as if it followed "trnanalysis" on the command line, so
"trna make full" runs the trna pipeline. Pipeline and command names
complete with Tab; 'rehash' rescans the search path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}

			session, err := shellpkg.NewSession(config.Dir(), Runner(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			session.Out = a.Out()
			session.Err = a.Err()
			session.Builtins = app.BuiltinNames(cmd.Root())
			session.Catalog = func() []string {
				return a.Discover().Commands()
			}

			if evalCmd != "" {
				session.Refresh()
				output, err := session.Eval(cmd.Context(), evalCmd)
				fmt.Fprint(a.Out(), output)
				return err
			}
			return session.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single command and exit")
	return cmd
}

// Runner returns a shell runner that executes each line through a new
// root command.
func Runner(stdin io.Reader) shellpkg.CommandRunner {
	return func(ctx context.Context, args []string, stdout, stderr io.Writer) error {
		if NewRoot == nil {
			return fmt.Errorf("shell runner not configured")
		}
		if len(args) > 0 && args[0] == "shell" {
			return fmt.Errorf("already in a shell")
		}
		root := NewRoot()
		root.SetArgs(args)
		root.SetIn(stdin)
		root.SetOut(stdout)
		root.SetErr(stderr)
		return root.ExecuteContext(ctx)
	}
}
