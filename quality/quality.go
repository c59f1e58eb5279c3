// Package quality provides QualityTool implementations that run real
// static-analysis tools and translate their output into engine.Finding
// values. These adapters sit outside the orchestrator core per spec.md's
// scope: the core only ever sees the engine.QualityTool interface.
package quality

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/stomper/stomper/engine"
)

// Runner abstracts process execution so adapters are testable without
// shelling out, mirroring the teacher's wt.GitRunner/wt.GHRunner pattern.
type Runner interface {
	Run(ctx context.Context, name string, args []string, dir string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string, dir string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// targetArgs returns the path arguments to pass a CLI tool for the given
// scope: "./..." for project scope, or the literal paths for file scope.
func targetArgs(scope engine.Scope, paths []string) []string {
	if scope == engine.ScopeProject || len(paths) == 0 {
		return []string{"./..."}
	}
	return append([]string(nil), paths...)
}
