package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "trnanalysis"}
	root.PersistentFlags().Bool("json", false, "")
	root.AddCommand(NewCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"config"}, args...))
	err := root.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestSetGetRoundTrip(t *testing.T) {
	setupHome(t)

	out, err := run(t, "set", "catalog.columns", "4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Set catalog.columns = 4") {
		t.Errorf("unexpected output %q", out)
	}

	viper.Reset()
	out, err = run(t, "get", "catalog.columns")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "catalog.columns: 4" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestGetUnset(t *testing.T) {
	setupHome(t)
	out, err := run(t, "get", "no.such.key")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(not set)") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestInitNoInteractive(t *testing.T) {
	setupHome(t)
	out, err := run(t, "init", "--no-interactive")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "config.yaml") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestValidateFailsOnErrors(t *testing.T) {
	setupHome(t)
	if _, err := run(t, "set", "catalog.columns", "0"); err != nil {
		t.Fatal(err)
	}
	viper.Reset()

	out, err := run(t, "validate")
	if err == nil {
		t.Error("expected validate to fail")
	}
	if !strings.Contains(out, "catalog.columns is 0") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestShowJSON(t *testing.T) {
	setupHome(t)
	out, err := run(t, "show", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"command": "config show"`) {
		t.Errorf("unexpected output %s", out)
	}
}

func TestEnv(t *testing.T) {
	setupHome(t)
	out, err := run(t, "env")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `export TRNANALYSIS_CATALOG_COLUMNS="3"`) {
		t.Errorf("unexpected output %q", out)
	}
}
