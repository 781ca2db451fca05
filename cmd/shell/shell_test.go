package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func fakeRoot() *cobra.Command {
	root := &cobra.Command{Use: "trnanalysis", SilenceErrors: true, SilenceUsage: true}
	root.AddCommand(&cobra.Command{
		Use: "echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(strings.Join(args, " "))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("failed")
		},
	})
	return root
}

func TestRunnerExecutesThroughRoot(t *testing.T) {
	orig := NewRoot
	NewRoot = fakeRoot
	t.Cleanup(func() { NewRoot = orig })

	var stdout, stderr bytes.Buffer
	run := Runner(strings.NewReader(""))
	if err := run(context.Background(), []string{"echo", "a", "b"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "a b\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}

	if err := run(context.Background(), []string{"fail"}, &stdout, &stderr); err == nil {
		t.Error("expected error from failing command")
	}
}

func TestRunnerRefusesNestedShell(t *testing.T) {
	orig := NewRoot
	NewRoot = fakeRoot
	t.Cleanup(func() { NewRoot = orig })

	var buf bytes.Buffer
	if err := Runner(nil)(context.Background(), []string{"shell"}, &buf, &buf); err == nil {
		t.Error("expected nested shell to be refused")
	}
}

func TestRunnerUnconfigured(t *testing.T) {
	orig := NewRoot
	NewRoot = nil
	t.Cleanup(func() { NewRoot = orig })

	var buf bytes.Buffer
	if err := Runner(nil)(context.Background(), []string{"echo"}, &buf, &buf); err == nil {
		t.Error("expected error without a root constructor")
	}
}
