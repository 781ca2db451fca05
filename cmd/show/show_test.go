package show

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/acribbs/trnanalysis/internal/app"
	"github.com/acribbs/trnanalysis/internal/pipeline"
)

func setup(t *testing.T, dirs ...string) *app.App {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRNANALYSIS_SEARCH_PATH", strings.Join(dirs, ","))
	viper.Reset()
	t.Cleanup(viper.Reset)

	a, err := app.New(app.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
}

func TestDescribe(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "pipeline_trna_qc.py"), "")
	writeFile(t, filepath.Join(first, "pipeline_trna_qc", pipeline.ManifestFile), "description: QC of tRNA reads\nauthor: Lab\n")
	writeFile(t, filepath.Join(second, "pipeline_trna_qc.sh"), "")
	a := setup(t, first, second)

	d, err := Describe(a, "trna-qc")
	if err != nil {
		t.Fatal(err)
	}
	if d.Entry.Path != filepath.Join(first, "pipeline_trna_qc.py") {
		t.Errorf("unexpected path %s", d.Entry.Path)
	}
	want := []string{"python3", filepath.Join(first, "pipeline_trna_qc.py")}
	if !reflect.DeepEqual(d.CommandLine, want) {
		t.Errorf("command line = %v, want %v", d.CommandLine, want)
	}
	if d.Manifest == nil || d.Manifest.Author != "Lab" {
		t.Errorf("unexpected manifest %+v", d.Manifest)
	}
	if len(d.Shadowed) != 1 || d.Shadowed[0] != filepath.Join(second, "pipeline_trna_qc.sh") {
		t.Errorf("unexpected shadowed %v", d.Shadowed)
	}

	var buf bytes.Buffer
	printDetails(&buf, d)
	for _, s := range []string{"trna_qc", "QC of tRNA reads", "Also found (not used):"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("output should contain %q:\n%s", s, buf.String())
		}
	}
}

func TestDescribeNotFound(t *testing.T) {
	a := setup(t, t.TempDir())

	_, err := Describe(a, "nope")
	var resErr *pipeline.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestPrintDetailsBuiltin(t *testing.T) {
	d := &Details{
		Entry:       &pipeline.Entry{Identifier: "pipeline_list", Command: "list", Path: "/p/pipeline_list.sh"},
		CommandLine: []string{"sh", "/p/pipeline_list.sh"},
		Builtin:     true,
	}
	var buf bytes.Buffer
	printDetails(&buf, d)
	if !strings.Contains(buf.String(), `built-in "list" command takes precedence`) {
		t.Errorf("expected shadowing warning:\n%s", buf.String())
	}
}
