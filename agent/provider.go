// Package agent adapts CLI-based coding-agent tools to engine.Agent. Unlike
// the teacher's multiagent package, this does not wrap any vendor SDK: the
// orchestrator core only needs the opaque success/failure contract of
// engine.Agent, so the provider here just shells out to a configured
// command and reads its exit status.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/stomper/stomper/engine"
)

// CommandSpec describes how to invoke a coding-agent CLI. Prompt is passed
// on stdin; the working directory is set to the sandbox path for each
// invocation.
type CommandSpec struct {
	// Name is the executable to run, e.g. "claude" or "codex".
	Name string
	// Args are extra CLI arguments appended after Name, e.g.
	// []string{"-p", "--permission-mode", "acceptEdits"}.
	Args []string
	// Timeout bounds a single invocation; zero means no timeout.
	Timeout time.Duration
	// BudgetUSD is forwarded to the invoked CLI as STOMPER_AGENT_BUDGET_USD
	// so cost-aware agents (e.g. the teacher's ephemeral sessions) can cap
	// their own spend; zero means no budget is set. The core never reads
	// this value — it is opaque to engine.Agent, set once at construction
	// the same way the teacher threads BudgetUSD into AgentConfig rather
	// than per-invocation.
	BudgetUSD float64
}

// budgetEnvVar is the environment variable used to forward CommandSpec's
// budget to the invoked CLI process.
const budgetEnvVar = "STOMPER_AGENT_BUDGET_USD"

// CLIProvider runs a configured CLI command per invocation and reports
// success based on its exit status, mirroring the teacher's pattern of
// treating a non-Claude provider as an opaque process plus a git diff for
// file-change detection (the provider itself never computes a diff; that
// is the VCS capability's job).
type CLIProvider struct {
	Spec CommandSpec
}

// NewCLIProvider creates a CLIProvider for the given command.
func NewCLIProvider(spec CommandSpec) *CLIProvider {
	return &CLIProvider{Spec: spec}
}

// Invoke satisfies engine.Agent.
func (p *CLIProvider) Invoke(ctx context.Context, prompt, workingDir string) (engine.AgentOutcome, error) {
	if p.Spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.Spec.Name, p.Spec.Args...)
	cmd.Dir = workingDir
	cmd.Stdin = bytes.NewReader([]byte(prompt))
	if p.Spec.BudgetUSD > 0 {
		cmd.Env = append(os.Environ(), budgetEnvVar+"="+strconv.FormatFloat(p.Spec.BudgetUSD, 'f', -1, 64))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return engine.AgentOutcome{
			Success: false,
			Detail:  fmt.Sprintf("%s exited with error: %v: %s", p.Spec.Name, err, firstLines(stderr.String(), 10)),
		}, nil
	}

	return engine.AgentOutcome{
		Success: true,
		Detail:  firstLines(stdout.String(), 10),
	}, nil
}

func firstLines(s string, n int) string {
	count := 0
	for i, r := range s {
		if r == '\n' {
			count++
			if count == n {
				return s[:i]
			}
		}
	}
	return s
}
