package quality

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stomper/stomper/engine"
)

// GoVet runs `go vet` and translates its stderr lines
// ("file.go:12:5: message") into Findings.
type GoVet struct {
	Runner Runner
}

// NewGoVet creates a GoVet adapter using the real process runner.
func NewGoVet() *GoVet {
	return &GoVet{Runner: ExecRunner{}}
}

func (v *GoVet) Name() string { return "go-vet" }

func (v *GoVet) Run(ctx context.Context, targetRoot string, scope engine.Scope, paths ...string) ([]engine.Finding, error) {
	args := append([]string{"vet"}, targetArgs(scope, paths)...)
	_, stderr, err := v.Runner.Run(ctx, "go", args, targetRoot)

	findings := parseVetOutput(stderr)
	if err != nil && len(findings) == 0 {
		return nil, fmt.Errorf("%w: %v", engine.ErrToolFailure, err)
	}
	return findings, nil
}

// parseVetOutput parses lines shaped "path/to/file.go:12:5: message".
// Lines that don't match (build errors, package headers) are skipped.
func parseVetOutput(output []byte) []engine.Finding {
	var findings []engine.Finding
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, ":", 4)
		if len(parts) != 4 {
			continue
		}
		lineNo, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		col, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		findings = append(findings, engine.Finding{
			Tool:     "go-vet",
			Code:     "vet",
			Message:  strings.TrimSpace(parts[3]),
			FilePath: parts[0],
			Line:     lineNo,
			Column:   col,
			Severity: engine.SeverityError,
		})
	}
	return findings
}
