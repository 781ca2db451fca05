// Package doctor provides the "trnanalysis doctor" command for checking the
// search path, interpreters and configuration.
package doctor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/acribbs/trnanalysis/internal/app"
	"github.com/acribbs/trnanalysis/internal/config"
	"github.com/acribbs/trnanalysis/internal/output"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the search path, interpreters and configuration",
		Long:  "Run diagnostic checks to verify trnanalysis can find and run its pipelines.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			checks := runChecks(a, app.BuiltinNames(cmd.Root()))

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				if err := output.FprintJSON(a.Out(), "doctor", checks); err != nil {
					return err
				}
			} else {
				printChecks(a.Out(), checks)
			}

			if n := countStatus(checks, "error"); n > 0 {
				return fmt.Errorf("%d check(s) failed", n)
			}
			return nil
		},
	}
}

func printChecks(w io.Writer, checks []Check) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(w, "trnanalysis doctor")
	fmt.Fprintln(w, "==================")
	fmt.Fprintln(w)

	for _, c := range checks {
		var icon string
		switch c.Status {
		case "ok":
			icon = green("✓")
		case "warning":
			icon = yellow("!")
		case "error":
			icon = red("✗")
		}
		fmt.Fprintf(w, "  %s %s: %s\n", icon, c.Name, c.Message)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %d passed, %d warnings, %d errors\n",
		countStatus(checks, "ok"), countStatus(checks, "warning"), countStatus(checks, "error"))
}

func countStatus(checks []Check, status string) int {
	n := 0
	for _, c := range checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

func runChecks(a *app.App, builtins []string) []Check {
	var checks []Check

	checks = append(checks, Check{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	if _, err := os.Stat(config.ConfigPath()); err == nil {
		checks = append(checks, Check{Name: "Config File", Status: "ok", Message: config.ConfigPath()})
	} else {
		checks = append(checks, Check{
			Name:    "Config File",
			Status:  "ok",
			Message: "not found, using defaults (run 'trnanalysis config init' to create one)",
		})
	}
	for _, issue := range config.Validate(a.Config) {
		status := issue.Severity
		if status == "info" {
			continue
		}
		msg := issue.Message
		if issue.Fix != "" {
			msg += " (fix: " + issue.Fix + ")"
		}
		checks = append(checks, Check{Name: "Config " + issue.Key, Status: status, Message: msg})
	}

	opts := a.Config.DiscoverOptions(a.Logger)
	opts.KeepDuplicates = true
	cat := pipeline.Discover(a.SearchPath(), opts)

	perDir := make(map[string]int)
	for _, e := range cat.Entries {
		perDir[e.Dir]++
	}
	skipped := make(map[string]string)
	for _, s := range cat.Skipped {
		skipped[s.Dir] = s.Reason
	}
	for i, dir := range cat.SearchPath {
		name := fmt.Sprintf("Search Path %d", i+1)
		if reason, ok := skipped[dir]; ok {
			checks = append(checks, Check{Name: name, Status: "warning", Message: fmt.Sprintf("%s skipped: %s", dir, reason)})
			continue
		}
		checks = append(checks, Check{Name: name, Status: "ok", Message: fmt.Sprintf("%s (%d pipelines)", dir, perDir[dir])})
	}

	used := make(map[string]bool)
	for _, e := range cat.Entries {
		used[e.Runtime.Ext] = true
	}
	for _, rt := range a.Config.Runtimes {
		name := fmt.Sprintf("Runtime %s", rt.Ext)
		fields := strings.Fields(rt.Interpreter)
		if len(fields) == 0 {
			checks = append(checks, Check{Name: name, Status: "ok", Message: "run directly"})
			continue
		}
		path, err := exec.LookPath(fields[0])
		switch {
		case err == nil:
			checks = append(checks, Check{Name: name, Status: "ok", Message: path})
		case used[rt.Ext]:
			checks = append(checks, Check{
				Name:    name,
				Status:  "error",
				Message: fmt.Sprintf("%s not found in PATH but pipelines need it", fields[0]),
			})
		default:
			checks = append(checks, Check{Name: name, Status: "warning", Message: fmt.Sprintf("%s not found in PATH", fields[0])})
		}
	}

	seen := make(map[string]string)
	unique := 0
	for _, e := range cat.Entries {
		if first, ok := seen[e.Identifier]; ok {
			checks = append(checks, Check{
				Name:    "Duplicate " + e.Identifier,
				Status:  "warning",
				Message: fmt.Sprintf("%s is hidden by %s", e.Path, first),
			})
			continue
		}
		seen[e.Identifier] = e.Path
		unique++
	}
	for _, b := range builtins {
		if path, ok := seen[pipeline.Identifier(b)]; ok {
			checks = append(checks, Check{
				Name:    "Shadowed " + pipeline.Identifier(b),
				Status:  "warning",
				Message: fmt.Sprintf("%s cannot be run: %q is a built-in command", path, b),
			})
		}
	}

	if unique == 0 {
		checks = append(checks, Check{Name: "Pipelines", Status: "warning", Message: "no pipelines found on the search path"})
	} else {
		checks = append(checks, Check{Name: "Pipelines", Status: "ok", Message: fmt.Sprintf("%d available", unique)})
	}

	return checks
}
