// Package app wires configuration, logging and the pipeline packages
// together for the command handlers.
package app

import (
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acribbs/trnanalysis/internal/config"
	"github.com/acribbs/trnanalysis/internal/logging"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// App holds the per-invocation dependencies shared by commands.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Stdio  pipeline.Stdio
}

// Options controls how an App is built.
type Options struct {
	Stdio   pipeline.Stdio
	Verbose bool
	NoColor bool
}

// New loads the configuration and builds the logger. Diagnostics go to
// opts.Stdio.Err.
func New(opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	errOut := opts.Stdio.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	if opts.NoColor || !cfg.Output.Color {
		color.NoColor = true
	}

	return &App{
		Config: cfg,
		Logger: logging.New(errOut, cfg.LogLevel, opts.Verbose),
		Stdio:  opts.Stdio,
	}, nil
}

// FromCommand builds an App from a cobra command's streams and the
// persistent --verbose and --no-color flags.
func FromCommand(cmd *cobra.Command) (*App, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return New(Options{
		Stdio:   StdioFor(cmd),
		Verbose: verbose,
		NoColor: noColor,
	})
}

// StdioFor returns the command's streams.
func StdioFor(cmd *cobra.Command) pipeline.Stdio {
	return pipeline.Stdio{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	}
}

// SearchPath returns the configured search path.
func (a *App) SearchPath() pipeline.SearchPath {
	return a.Config.SearchPath()
}

// Discover scans the search path.
func (a *App) Discover() *pipeline.Catalog {
	return pipeline.Discover(a.SearchPath(), a.Config.DiscoverOptions(a.Logger))
}

// Resolver returns a resolver writing to the app's streams.
func (a *App) Resolver() *pipeline.DirResolver {
	return a.Config.Resolver(a.Stdio, a.Logger)
}

// Dispatcher returns a dispatcher over the app's resolver.
func (a *App) Dispatcher() *pipeline.Dispatcher {
	return &pipeline.Dispatcher{Resolver: a.Resolver(), Logger: a.Logger}
}

// FormatCatalog renders cat in the configured layout.
func (a *App) FormatCatalog(cat *pipeline.Catalog) string {
	return cat.Format(a.Config.Columns(), a.Config.Catalog.StripPrefix)
}

// Out returns the app's standard output.
func (a *App) Out() io.Writer {
	if a.Stdio.Out == nil {
		return os.Stdout
	}
	return a.Stdio.Out
}

// Err returns the app's standard error.
func (a *App) Err() io.Writer {
	if a.Stdio.Err == nil {
		return os.Stderr
	}
	return a.Stdio.Err
}

// BuiltinNames returns the names of root's management commands, which take
// precedence over pipelines of the same name.
func BuiltinNames(root *cobra.Command) []string {
	names := []string{"help"}
	for _, c := range root.Commands() {
		if c.Hidden || c.Name() == "help" {
			continue
		}
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}
