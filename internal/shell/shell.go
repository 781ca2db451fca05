// Package shell provides the interactive trnanalysis REPL.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// CommandRunner executes one trnanalysis command line, already split into
// arguments, writing its output to stdout and stderr.
type CommandRunner func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// CatalogFunc returns the pipeline commands currently available.
type CatalogFunc func() []string

// workflowActions are the actions pipeline scripts conventionally accept as
// their first argument.
var workflowActions = []string{"check", "clone", "config", "dump", "make", "plot", "printconfig", "show", "touch"}

var builtinSubcommands = map[string][]string{
	"config":     {"init", "show", "set", "get", "reset", "path", "validate"},
	"completion": {"bash", "zsh", "fish", "powershell"},
}

// Session manages an interactive shell session.
type Session struct {
	Runner         CommandRunner
	Catalog        CatalogFunc
	LastOutput     string
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time
	Out            io.Writer
	Err            io.Writer

	// Builtins are the management commands offered for completion.
	Builtins []string
	// Pipelines are the discovered pipeline commands.
	Pipelines []string

	stale bool
}

// NewSession creates a new interactive session. Its history is kept in
// dir/shell_history.
func NewSession(dir string, runner CommandRunner) (*Session, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create %s: %w", dir, err)
	}

	return &Session{
		Runner:      runner,
		HistoryFile: filepath.Join(dir, "shell_history"),
		StartTime:   time.Now(),
		Out:         os.Stdout,
		Err:         os.Stderr,
		Builtins:    []string{"list", "show", "doctor", "config", "completion", "version"},
	}, nil
}

// KnownCommands returns builtins, pipelines and shell commands for completion.
func (s *Session) KnownCommands() []string {
	cmds := append([]string{}, s.Builtins...)
	cmds = append(cmds, s.Pipelines...)
	cmds = append(cmds, "help", "history", "rehash", "exit", "quit")
	return cmds
}

// Refresh reloads Pipelines from the catalog function.
func (s *Session) Refresh() {
	if s.Catalog != nil {
		s.Pipelines = s.Catalog()
	}
	s.stale = false
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	if s.Runner == nil {
		return fmt.Errorf("shell runner not configured")
	}
	s.Refresh()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "trnanalysis> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(s.buildCompleter()...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          s.Out,
		Stderr:          s.Err,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(s.Out, "trnanalysis interactive shell")
	fmt.Fprintln(s.Out, "Type 'help' for commands, 'exit' to quit.")
	fmt.Fprintln(s.Out)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if s.handle(ctx, line) {
			return nil
		}
		if s.stale {
			s.Refresh()
			rl.Config.AutoComplete = readline.NewPrefixCompleter(s.buildCompleter()...)
		}
	}

	return nil
}

// handle runs one input line and reports whether the session should end.
func (s *Session) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.CommandHistory = append(s.CommandHistory, line)

	switch line {
	case "exit", "quit":
		fmt.Fprintf(s.Out, "\nSession ended. %d commands run in %s.\n",
			len(s.CommandHistory)-1, formatDuration(time.Since(s.StartTime)))
		return true
	case "help":
		s.printHelp()
	case "history":
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(s.Out, "  %d  %s\n", i+1, cmd)
		}
	case "rehash":
		s.stale = true
	default:
		args := strings.Fields(line)
		if err := s.Runner(ctx, args, s.Out, s.Err); err != nil {
			var exitErr *pipeline.ExitError
			if errors.As(err, &exitErr) {
				fmt.Fprintf(s.Err, "%s exited with status %d\n", exitErr.Identifier, exitErr.Code)
			} else {
				fmt.Fprintf(s.Err, "Error: %s\n", err)
			}
		}
	}
	return false
}

// Eval runs a single command string and returns its buffered output.
func (s *Session) Eval(ctx context.Context, command string) (string, error) {
	if s.Runner == nil {
		return "", fmt.Errorf("shell runner not configured")
	}

	args := strings.Fields(command)
	if len(args) == 0 {
		return "", nil
	}

	var stdout, stderr bytes.Buffer
	err := s.Runner(ctx, args, &stdout, &stderr)

	output := stdout.String()
	s.LastOutput = output

	errOut := stderr.String()
	if errOut != "" && err != nil {
		return output, fmt.Errorf("%s: %w", strings.TrimSpace(errOut), err)
	}
	if errOut != "" && s.Err != nil {
		fmt.Fprint(s.Err, errOut)
	}

	return output, err
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands()
	}

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		var matches []string
		for _, cmd := range s.KnownCommands() {
			if strings.HasPrefix(cmd, parts[0]) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}

	subs := s.subcommandsFor(parts[0])
	if len(parts) == 1 {
		return subs
	}
	if len(parts) == 2 && !strings.HasSuffix(input, " ") {
		var matches []string
		for _, sub := range subs {
			if strings.HasPrefix(sub, parts[1]) {
				matches = append(matches, sub)
			}
		}
		return matches
	}

	return nil
}

func (s *Session) subcommandsFor(parent string) []string {
	if subs, ok := builtinSubcommands[parent]; ok {
		return subs
	}
	if parent == "show" {
		return s.Pipelines
	}
	for _, p := range s.Pipelines {
		if p == parent {
			return workflowActions
		}
	}
	return nil
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.Out, "Management commands:")
	fmt.Fprintln(s.Out, pipeline.FormatColumns(s.Builtins, pipeline.DefaultColumns))
	fmt.Fprintln(s.Out)
	if len(s.Pipelines) > 0 {
		fmt.Fprintln(s.Out, "Pipelines:")
		fmt.Fprintln(s.Out, pipeline.FormatColumns(s.Pipelines, pipeline.DefaultColumns))
	} else {
		fmt.Fprintln(s.Out, "No pipelines found on the search path.")
	}
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "Shell commands:")
	fmt.Fprintln(s.Out, "  help       show this help")
	fmt.Fprintln(s.Out, "  history    show command history")
	fmt.Fprintln(s.Out, "  rehash     rescan the search path")
	fmt.Fprintln(s.Out, "  exit       exit the shell")
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands() {
		subs := s.subcommandsFor(cmd)
		if len(subs) > 0 {
			var subItems []readline.PrefixCompleterInterface
			for _, sub := range subs {
				subItems = append(subItems, readline.PcItem(sub))
			}
			items = append(items, readline.PcItem(cmd, subItems...))
		} else {
			items = append(items, readline.PcItem(cmd))
		}
	}
	return items
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
