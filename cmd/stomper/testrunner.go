package main

import (
	"bytes"
	"context"
	"os/exec"
)

// goTestRunner runs `go test` against a sandbox workdir, implementing
// engine.TestRunner.
type goTestRunner struct{}

func (goTestRunner) Run(ctx context.Context, workdir string, targets []string) (bool, string, error) {
	if len(targets) == 0 {
		targets = []string{"./..."}
	}
	args := append([]string{"test"}, targets...)
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = workdir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			return false, out.String(), nil
		}
		return false, out.String(), err
	}
	return true, out.String(), nil
}

// packageTestSelector selects the Go package containing a changed file as
// the "quick" test target, implementing engine.TestSelector.
type packageTestSelector struct{}

func (packageTestSelector) SelectForFile(ctx context.Context, workdir, filePath string) ([]string, error) {
	return []string{"./" + parentDir(filePath)}, nil
}

func parentDir(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if filePath[i] == '/' {
			return filePath[:i]
		}
	}
	return "."
}
