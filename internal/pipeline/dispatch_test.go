package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type recordingUnit struct {
	argv []string
	err  error
}

func (u *recordingUnit) Run(_ context.Context, argv []string) error {
	u.argv = argv
	return u.err
}

type mapResolver struct {
	units    map[string]Unit
	resolved []string
}

func (r *mapResolver) Resolve(id string) (Unit, error) {
	r.resolved = append(r.resolved, id)
	if u, ok := r.units[id]; ok {
		return u, nil
	}
	return nil, &ResolutionError{Identifier: id}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"trna", "pipeline_trna"},
		{"trna-qc", "pipeline_trna_qc"},
		{"a-b-c", "pipeline_a_b_c"},
		{"already_underscored", "pipeline_already_underscored"},
		{"--", "pipeline___"},
	}
	for _, tt := range tests {
		if got := Identifier(tt.token); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
	if got := CommandName("pipeline_trna_qc"); got != "trna_qc" {
		t.Errorf("CommandName = %q", got)
	}
}

func TestIsHelp(t *testing.T) {
	tests := []struct {
		argv []string
		want bool
	}{
		{nil, true},
		{[]string{"trnanalysis"}, true},
		{[]string{"trnanalysis", "--help"}, true},
		{[]string{"trnanalysis", "-h"}, true},
		{[]string{"trnanalysis", "trna"}, false},
		{[]string{"trnanalysis", "trna", "--help"}, false},
	}
	for _, tt := range tests {
		if got := IsHelp(tt.argv); got != tt.want {
			t.Errorf("IsHelp(%v) = %v, want %v", tt.argv, got, tt.want)
		}
	}
}

func TestDispatchHelpDoesNotResolve(t *testing.T) {
	r := &mapResolver{}
	d := &Dispatcher{Resolver: r}

	for _, argv := range [][]string{{"trnanalysis"}, {"trnanalysis", "-h"}, {"trnanalysis", "--help", "x"}} {
		err := d.Dispatch(context.Background(), argv)
		if !errors.Is(err, ErrHelpRequested) {
			t.Errorf("Dispatch(%v) = %v, want ErrHelpRequested", argv, err)
		}
	}
	if len(r.resolved) != 0 {
		t.Errorf("help must not resolve anything, resolved %v", r.resolved)
	}
}

func TestDispatchForwardsArguments(t *testing.T) {
	unit := &recordingUnit{}
	r := &mapResolver{units: map[string]Unit{"pipeline_trna": unit}}
	d := &Dispatcher{Resolver: r}

	if err := d.Dispatch(context.Background(), []string{"trnanalysis", "trna", "extra-arg"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(unit.argv, []string{"trna", "extra-arg"}) {
		t.Errorf("unexpected forwarded argv %v", unit.argv)
	}
}

func TestDispatchNormalizesHyphens(t *testing.T) {
	unit := &recordingUnit{}
	r := &mapResolver{units: map[string]Unit{"pipeline_trna_qc": unit}}
	d := &Dispatcher{Resolver: r}

	if err := d.Dispatch(context.Background(), []string{"trnanalysis", "trna-qc", "make", "full"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.resolved, []string{"pipeline_trna_qc"}) {
		t.Errorf("resolved %v", r.resolved)
	}
	if !reflect.DeepEqual(unit.argv, []string{"trna-qc", "make", "full"}) {
		t.Errorf("unexpected forwarded argv %v", unit.argv)
	}
}

func TestDispatchResolutionError(t *testing.T) {
	d := &Dispatcher{Resolver: &mapResolver{}}

	err := d.Dispatch(context.Background(), []string{"trnanalysis", "doesnotexist"})
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if resErr.Identifier != "pipeline_doesnotexist" {
		t.Errorf("unexpected identifier %q", resErr.Identifier)
	}
	if !strings.Contains(err.Error(), "no module named 'pipeline_doesnotexist'") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestDispatchPropagatesUnitError(t *testing.T) {
	unitErr := &ExitError{Identifier: "pipeline_trna", Code: 3}
	r := &mapResolver{units: map[string]Unit{"pipeline_trna": &recordingUnit{err: unitErr}}}
	d := &Dispatcher{Resolver: r}

	err := d.Dispatch(context.Background(), []string{"trnanalysis", "trna"})
	if err != unitErr {
		t.Errorf("expected the unit's error unchanged, got %v", err)
	}
}

func TestDirResolverFirstDirectoryWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeUnit(t, first, "pipeline_trna.sh", "")
	writeUnit(t, second, "pipeline_trna.py", "")

	r := &DirResolver{SearchPath: NewSearchPath(first, second)}
	e, err := r.Lookup("pipeline_trna")
	if err != nil {
		t.Fatal(err)
	}
	if e.Dir != first {
		t.Errorf("expected %s, got %s", first, e.Dir)
	}
}

func TestDirResolverSkipsMissingDirectories(t *testing.T) {
	present := t.TempDir()
	writeUnit(t, present, "pipeline_trna.py", "")

	r := &DirResolver{SearchPath: NewSearchPath(filepath.Join(present, "nope"), present)}
	if _, err := r.Lookup("pipeline_trna"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDirResolverNotFound(t *testing.T) {
	dir := t.TempDir()
	r := &DirResolver{SearchPath: NewSearchPath(dir)}

	_, err := r.Resolve("pipeline_doesnotexist")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if !strings.Contains(err.Error(), dir) {
		t.Errorf("expected searched directory in message, got %q", err.Error())
	}
}

func TestDirResolverRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, filepath.Join(dir, "pipeline_x"), "evil.sh", "")

	r := &DirResolver{SearchPath: NewSearchPath(dir)}
	if _, err := r.Lookup("pipeline_x/evil"); err == nil {
		t.Error("expected lookup outside the unit naming scheme to fail")
	}
}

func TestResolutionErrorWithoutSearchPath(t *testing.T) {
	err := &ResolutionError{Identifier: "pipeline_x"}
	if !strings.Contains(err.Error(), "searched: none") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestScriptUnitRunForwardsArgs(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	writeUnit(t, dir, "pipeline_echo.sh", `echo "args:$*"`+"\n")

	var stdout bytes.Buffer
	r := &DirResolver{
		SearchPath: NewSearchPath(dir),
		Stdio:      Stdio{Out: &stdout},
	}
	d := &Dispatcher{Resolver: r}

	if err := d.Dispatch(context.Background(), []string{"trnanalysis", "echo", "extra-arg", "--flag"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "args:extra-arg --flag" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestScriptUnitExitCode(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	writeUnit(t, dir, "pipeline_fail.sh", "echo failing >&2\nexit 7\n")

	var stderr bytes.Buffer
	r := &DirResolver{SearchPath: NewSearchPath(dir), Stdio: Stdio{Err: &stderr}}
	unit, err := r.Resolve("pipeline_fail")
	if err != nil {
		t.Fatal(err)
	}

	err = unit.Run(context.Background(), []string{"fail"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("expected exit code 7, got %d", exitErr.Code)
	}
	if !strings.Contains(stderr.String(), "failing") {
		t.Errorf("expected child stderr to be forwarded, got %q", stderr.String())
	}
}

func TestScriptUnitMissingInterpreter(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "pipeline_x.nope", "")

	u := &ScriptUnit{Entry: Entry{
		Identifier: "pipeline_x",
		Path:       path,
		Runtime:    Runtime{Ext: ".nope", Interpreter: "trnanalysis-no-such-interpreter"},
	}}
	err := u.Run(context.Background(), []string{"x"})
	var startErr *StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("expected StartError, got %v", err)
	}
}

func TestScriptUnitCommandLine(t *testing.T) {
	u := &ScriptUnit{Entry: Entry{
		Path:    "/opt/pipelines/pipeline_trna.py",
		Runtime: Runtime{Ext: ".py", Interpreter: "python3 -u"},
	}}
	cmd := u.Command(context.Background(), []string{"trna", "make", "full"})
	want := []string{"python3", "-u", "/opt/pipelines/pipeline_trna.py", "make", "full"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("got %v, want %v", cmd.Args, want)
	}

	direct := &ScriptUnit{Entry: Entry{Path: "/opt/pipelines/pipeline_bin"}}
	cmd = direct.Command(context.Background(), []string{"bin"})
	if !reflect.DeepEqual(cmd.Args, []string{"/opt/pipelines/pipeline_bin"}) {
		t.Errorf("unexpected direct args %v", cmd.Args)
	}
}

func TestScriptUnitKilledBySignal(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	writeUnit(t, dir, "pipeline_killed.sh", "kill -9 $$\n")

	r := &DirResolver{SearchPath: NewSearchPath(dir)}
	unit, err := r.Resolve("pipeline_killed")
	if err != nil {
		t.Fatal(err)
	}

	err = unit.Run(context.Background(), []string{"killed"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 128+9 {
		t.Errorf("expected exit code 137, got %d", exitErr.Code)
	}
}
