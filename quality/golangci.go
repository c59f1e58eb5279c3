package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/stomper/stomper/engine"
)

// golangciReport mirrors the subset of golangci-lint's JSON output
// (`golangci-lint run --out-format json`) this adapter consumes.
type golangciReport struct {
	Issues []golangciIssue `json:"Issues"`
}

type golangciIssue struct {
	FromLinter string           `json:"FromLinter"`
	Text       string           `json:"Text"`
	Severity   string           `json:"Severity"`
	Pos        golangciPosition `json:"Pos"`
}

type golangciPosition struct {
	Filename string `json:"Filename"`
	Line     int    `json:"Line"`
	Column   int    `json:"Column"`
}

// GolangCILint runs golangci-lint and translates its JSON report into
// Findings.
type GolangCILint struct {
	Runner Runner
}

// NewGolangCILint creates a GolangCILint adapter using the real process
// runner.
func NewGolangCILint() *GolangCILint {
	return &GolangCILint{Runner: ExecRunner{}}
}

func (g *GolangCILint) Name() string { return "golangci-lint" }

func (g *GolangCILint) Run(ctx context.Context, targetRoot string, scope engine.Scope, paths ...string) ([]engine.Finding, error) {
	args := append([]string{"run", "--out-format", "json"}, targetArgs(scope, paths)...)
	stdout, _, err := g.Runner.Run(ctx, "golangci-lint", args, targetRoot)

	// golangci-lint exits non-zero when it finds issues; that is not a
	// tool failure as long as it produced a parseable report.
	var report golangciReport
	if jsonErr := json.Unmarshal(stdout, &report); jsonErr != nil {
		if _, isExit := err.(*exec.ExitError); !isExit || len(stdout) == 0 {
			return nil, fmt.Errorf("%w: %v", engine.ErrToolFailure, err)
		}
		return nil, fmt.Errorf("%w: parse report: %v", engine.ErrToolFailure, jsonErr)
	}

	findings := make([]engine.Finding, 0, len(report.Issues))
	for _, iss := range report.Issues {
		findings = append(findings, engine.Finding{
			Tool:        g.Name(),
			Code:        iss.FromLinter,
			Message:     iss.Text,
			FilePath:    iss.Pos.Filename,
			Line:        iss.Pos.Line,
			Column:      iss.Pos.Column,
			Severity:    mapGolangciSeverity(iss.Severity),
			AutoFixable: false,
		})
	}
	return findings, nil
}

func mapGolangciSeverity(s string) engine.Severity {
	switch s {
	case "warning":
		return engine.SeverityWarning
	case "info":
		return engine.SeverityInfo
	default:
		return engine.SeverityError
	}
}
