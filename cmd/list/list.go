// Package list provides the "trnanalysis list" command.
package list

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acribbs/trnanalysis/internal/app"
	"github.com/acribbs/trnanalysis/internal/catalogexport"
	"github.com/acribbs/trnanalysis/internal/output"
	"github.com/acribbs/trnanalysis/internal/pipeline"
	"github.com/acribbs/trnanalysis/internal/watch"
)

type options struct {
	long        bool
	xlsxPath    string
	watch       bool
	columns     int
	stripPrefix bool
	jsonOut     bool
}

// NewCommand creates the "list" command.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the pipelines on the search path",
		Long: `List every pipeline found on the search path, in search order.

The search path is the directory holding the trnanalysis executable, then
../src relative to the current directory, then any search_path entries from
the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			opts.jsonOut, _ = cmd.Flags().GetBool("json")
			if !cmd.Flags().Changed("columns") {
				opts.columns = a.Config.Columns()
			}
			if !cmd.Flags().Changed("strip-prefix") {
				opts.stripPrefix = a.Config.Catalog.StripPrefix
			}

			cat := a.Discover()
			if opts.xlsxPath == "-" {
				return catalogexport.EncodeXLSX(cat, a.Out())
			}
			if opts.xlsxPath != "" {
				if err := catalogexport.WriteXLSX(cat, opts.xlsxPath); err != nil {
					return err
				}
				fmt.Fprintf(a.Out(), "Wrote %d pipeline(s) to %s\n", len(cat.Entries), opts.xlsxPath)
				return nil
			}

			if err := render(a.Out(), cat, opts); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchCatalog(ctx, a, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "Show one pipeline per line with runtime, version and description")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Write the catalog to an Excel workbook (- for stdout)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reprint the catalog when pipelines are added or removed")
	cmd.Flags().IntVar(&opts.columns, "columns", pipeline.DefaultColumns, "Number of columns in the catalog")
	cmd.Flags().BoolVar(&opts.stripPrefix, "strip-prefix", false, "Show command names without the pipeline_ prefix")
	return cmd
}

func render(w io.Writer, cat *pipeline.Catalog, opts options) error {
	switch {
	case opts.jsonOut:
		return output.FprintJSON(w, "list", cat)
	case opts.long:
		return renderLong(w, cat)
	}

	if len(cat.Entries) == 0 {
		fmt.Fprintln(w, "No pipelines found.")
		for _, dir := range cat.SearchPath {
			fmt.Fprintf(w, "  searched %s\n", dir)
		}
		return nil
	}
	_, err := fmt.Fprintln(w, cat.Format(opts.columns, opts.stripPrefix))
	return err
}

func renderLong(w io.Writer, cat *pipeline.Catalog) error {
	fmt.Fprintf(w, "Pipelines (%d)\n\n", len(cat.Entries))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "COMMAND\tRUNTIME\tVERSION\tDESCRIPTION\tPATH\n")
	for _, e := range cat.Entries {
		runtime := e.Runtime.Interpreter
		if runtime == "" {
			runtime = "(direct)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Command, runtime, dash(e.Version), dash(e.Description), e.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, s := range cat.Skipped {
		fmt.Fprintf(w, "\nskipped %s: %s", s.Dir, s.Reason)
	}
	if len(cat.Skipped) > 0 {
		fmt.Fprintln(w)
	}
	return nil
}

func watchCatalog(ctx context.Context, a *app.App, opts options) error {
	w, err := watch.New(watch.Config{
		Directories: a.SearchPath(),
		Runtimes:    a.Config.Runtimes,
	})
	if err != nil {
		return err
	}
	w.Logger = a.Logger
	w.Handler = func(events []watch.Event) {
		a.Logger.Debug("catalog changed", "events", len(events))
		fmt.Fprintln(a.Out())
		if err := render(a.Out(), a.Discover(), opts); err != nil {
			a.Logger.Warn("could not print catalog", "err", err)
		}
	}

	fmt.Fprintln(a.Err(), "Watching for pipeline changes, press Ctrl+C to stop.")
	err = w.Start(ctx)
	printWatchSummary(a.Err(), w.GetStatus())
	return err
}

func printWatchSummary(w io.Writer, st watch.Status) {
	fmt.Fprintf(w, "Stopped watching %d director(ies) after %d change(s).\n", len(st.Directories), st.EventCount)
	for _, dir := range st.Skipped {
		fmt.Fprintf(w, "  not watched (missing): %s\n", dir)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
