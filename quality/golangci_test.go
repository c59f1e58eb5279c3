package quality

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stomper/stomper/engine"
)

func TestGolangCILint_Run_ParsesReport(t *testing.T) {
	stdout := []byte(`{"Issues":[
		{"FromLinter":"errcheck","Text":"error not checked","Severity":"error","Pos":{"Filename":"a.go","Line":10,"Column":2}},
		{"FromLinter":"unused","Text":"x is unused","Severity":"warning","Pos":{"Filename":"b.go","Line":4,"Column":1}},
		{"FromLinter":"gocritic","Text":"style nit","Severity":"info","Pos":{"Filename":"c.go","Line":1,"Column":1}}
	]}`)
	g := &GolangCILint{Runner: fakeRunner{stdout: stdout, err: &exec.ExitError{}}}

	findings, err := g.Run(context.Background(), "/root", engine.ScopeProject)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("len(findings) = %d, want 3", len(findings))
	}

	want := []engine.Finding{
		{Tool: "golangci-lint", Code: "errcheck", Message: "error not checked", FilePath: "a.go", Line: 10, Column: 2, Severity: engine.SeverityError},
		{Tool: "golangci-lint", Code: "unused", Message: "x is unused", FilePath: "b.go", Line: 4, Column: 1, Severity: engine.SeverityWarning},
		{Tool: "golangci-lint", Code: "gocritic", Message: "style nit", FilePath: "c.go", Line: 1, Column: 1, Severity: engine.SeverityInfo},
	}
	for i, w := range want {
		if findings[i] != w {
			t.Errorf("findings[%d] = %+v, want %+v", i, findings[i], w)
		}
	}
}

func TestGolangCILint_Run_NoIssuesEmptyFindings(t *testing.T) {
	g := &GolangCILint{Runner: fakeRunner{stdout: []byte(`{"Issues":[]}`)}}

	findings, err := g.Run(context.Background(), "/root", engine.ScopeProject)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("findings = %+v, want none", findings)
	}
}

func TestGolangCILint_Run_NonZeroExitWithValidJSONIsNotFailure(t *testing.T) {
	// golangci-lint's normal behavior when it finds issues: non-zero exit,
	// but stdout is still a well-formed report.
	g := &GolangCILint{Runner: fakeRunner{
		stdout: []byte(`{"Issues":[{"FromLinter":"errcheck","Text":"oops","Severity":"error","Pos":{"Filename":"a.go","Line":1,"Column":1}}]}`),
		err:    &exec.ExitError{},
	}}

	findings, err := g.Run(context.Background(), "/root", engine.ScopeProject)
	if err != nil {
		t.Fatalf("Run: %v, want no error for a valid report despite non-zero exit", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
}

func TestGolangCILint_Run_MalformedJSONWithExitErrorIsToolFailure(t *testing.T) {
	g := &GolangCILint{Runner: fakeRunner{
		stdout: []byte("panic: runtime error\ngoroutine 1 [running]:\n"),
		err:    &exec.ExitError{},
	}}

	_, err := g.Run(context.Background(), "/root", engine.ScopeProject)
	if !errors.Is(err, engine.ErrToolFailure) {
		t.Fatalf("err = %v, want wrapping engine.ErrToolFailure", err)
	}
}

func TestGolangCILint_Run_MalformedJSONWithNonExitErrorIsToolFailure(t *testing.T) {
	g := &GolangCILint{Runner: fakeRunner{
		stdout: []byte("not json at all"),
		err:    errors.New("exec: \"golangci-lint\": executable file not found in $PATH"),
	}}

	_, err := g.Run(context.Background(), "/root", engine.ScopeProject)
	if !errors.Is(err, engine.ErrToolFailure) {
		t.Fatalf("err = %v, want wrapping engine.ErrToolFailure", err)
	}
}

func TestGolangCILint_Run_EmptyStdoutNoErrIsToolFailure(t *testing.T) {
	// Empty stdout fails JSON parsing; with no error and empty stdout this
	// still can't be treated as a valid (empty) report.
	g := &GolangCILint{Runner: fakeRunner{stdout: nil}}

	_, err := g.Run(context.Background(), "/root", engine.ScopeProject)
	if !errors.Is(err, engine.ErrToolFailure) {
		t.Fatalf("err = %v, want wrapping engine.ErrToolFailure", err)
	}
}
