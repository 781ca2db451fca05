package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// Unit is an invocable pipeline. argv[0] is the command token the user
// typed; the rest are the arguments forwarded to the pipeline.
type Unit interface {
	Run(ctx context.Context, argv []string) error
}

// Stdio is the standard streams handed to a unit. Nil fields fall back to
// the process's own streams.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// ScriptUnit runs a discovered pipeline file through its runtime.
type ScriptUnit struct {
	Entry Entry
	Stdio Stdio
}

// Command builds the process that runs the unit for argv.
func (u *ScriptUnit) Command(ctx context.Context, argv []string) *exec.Cmd {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}

	name := u.Entry.Path
	var cmdArgs []string
	if fields := strings.Fields(u.Entry.Runtime.Interpreter); len(fields) > 0 {
		name = fields[0]
		cmdArgs = append(cmdArgs, fields[1:]...)
		cmdArgs = append(cmdArgs, u.Entry.Path)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, name, cmdArgs...)
	cmd.Stdin = u.Stdio.In
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = u.Stdio.Out
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = u.Stdio.Err
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd
}

// Run starts the unit and waits for it. A non-zero exit is returned as
// *ExitError carrying the child's status; a failure to start is *StartError.
// While the child runs, SIGINT is left to the child (it shares the terminal)
// and SIGTERM is relayed to it.
func (u *ScriptUnit) Run(ctx context.Context, argv []string) error {
	cmd := u.Command(ctx, argv)
	if err := cmd.Start(); err != nil {
		return &StartError{Identifier: u.Entry.Identifier, Err: err}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-sigs:
				if sig == syscall.SIGTERM {
					_ = cmd.Process.Signal(sig)
				}
			case <-done:
				return
			}
		}
	}()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				code = 128 + int(ws.Signal())
			} else if code < 0 {
				code = 1
			}
			return &ExitError{Identifier: u.Entry.Identifier, Code: code}
		}
		return fmt.Errorf("%s: %w", u.Entry.Identifier, err)
	}
	return nil
}
