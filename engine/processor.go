package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// processFile runs the full per-file sub-pipeline to completion inside an
// isolated sandbox: create_sandbox → build_prompt → invoke_agent → verify →
// run_tests → extract_diff → {critical section} → destroy_sandbox. It
// returns exactly one of a success or failure partial result, never both,
// per spec.md §4.3's File Processor contract.
//
// A panic inside this function (e.g. from a misbehaving Agent
// implementation) is recovered at this boundary and reported as an
// AgentFailure for this file; it never reaches the scheduler.
func processFile(ctx context.Context, cfg SessionConfig, app *applicator, sessionID string, item FileWorkItem) (result partialResult) {
	defer func() {
		if r := recover(); r != nil {
			result = partialResult{filePath: item.FilePath, reason: fmt.Sprintf("agent unable to fix: panic: %v", r)}
		}
	}()

	branch := BranchState{
		SessionID: sessionID,
		WorkItem:  item,
	}

	sandboxID := fmt.Sprintf("%s:%s:%s", sessionID, fileStem(item.FilePath), uuid.NewString())

	sandboxPath, err := cfg.Sandbox.Create(ctx, sandboxID, "")
	if err != nil {
		return fail(item.FilePath, fmt.Errorf("%w: create: %v", ErrSandboxFailure, err))
	}
	branch.SandboxID = sandboxID
	defer destroySandbox(ctx, cfg, sandboxID)

	if _, err := os.Stat(filepath.Join(sandboxPath, item.FilePath)); err != nil {
		return fail(item.FilePath, ErrFileMissing)
	}

	originalFindings := item.Findings

	for {
		branch.WorkItem.AttemptsUsed++

		var feedback *Feedback
		if branch.WorkItem.LastFeedback != "" {
			feedback = &Feedback{ToolNote: branch.WorkItem.LastFeedback}
		}
		branch.Prompt = cfg.PromptBuilder.Build(branch.WorkItem.Findings, item.FilePath, feedback)

		outcome, err := cfg.Agent.Invoke(ctx, branch.Prompt, sandboxPath)
		if err != nil || !outcome.Success {
			if branch.WorkItem.AttemptsUsed < branch.WorkItem.MaxAttempts {
				branch.WorkItem.LastFeedback = agentFailureFeedback(err, outcome)
				continue
			}
			return fail(item.FilePath, fmt.Errorf("%w: %s", ErrAgentFailure, agentFailureFeedback(err, outcome)))
		}

		postFindings, verifyErr := runVerification(ctx, cfg, sandboxPath, item.FilePath)
		if verifyErr != nil {
			if branch.WorkItem.AttemptsUsed < branch.WorkItem.MaxAttempts {
				branch.WorkItem.LastFeedback = verifyErr.Error()
				continue
			}
			return fail(item.FilePath, fmt.Errorf("%w: verification exhausted", ErrVerificationFailure))
		}
		branch.PostAgentFindings = postFindings

		if improved, feedbackMsg := resolvedStrictly(originalFindings, postFindings); !improved {
			if branch.WorkItem.AttemptsUsed < branch.WorkItem.MaxAttempts {
				branch.WorkItem.LastFeedback = feedbackMsg
				continue
			}
			return fail(item.FilePath, fmt.Errorf("%w: verification exhausted", ErrVerificationFailure))
		}

		if cfg.TestValidation == TestValidationFull || cfg.TestValidation == TestValidationQuick {
			ok, output, testErr := runTests(ctx, cfg, sandboxPath, item.FilePath)
			if testErr != nil || !ok {
				if branch.WorkItem.AttemptsUsed < branch.WorkItem.MaxAttempts {
					branch.WorkItem.LastFeedback = "tests failed: " + firstLine(output, testErr)
					continue
				}
				return fail(item.FilePath, fmt.Errorf("%w: tests regressed", ErrTestFailure))
			}
		}

		diff, err := cfg.VCS.Diff(ctx, sandboxPath, item.FilePath)
		if err != nil {
			return fail(item.FilePath, fmt.Errorf("%w: diff: %v", ErrSandboxFailure, err))
		}
		branch.Diff = diff

		resolvedCount := len(originalFindings) - len(remaining(originalFindings, postFindings))

		if diff == "" {
			if resolvedCount > 0 {
				// Findings vanished via tool-side auto-fix with no
				// textual diff left to apply; still a success.
				return succeed(item.FilePath, resolvedCount)
			}
			return fail(item.FilePath, ErrNoChange)
		}

		rev, err := app.applyAndCommit(ctx, cfg.TargetRoot, item.FilePath, diff)
		if err != nil {
			return fail(item.FilePath, err)
		}
		cfg.Logger.Info("committed fix", "file", item.FilePath, "revision", rev, "errorsFixed", resolvedCount)

		return succeed(item.FilePath, resolvedCount)
	}
}

func fail(filePath string, err error) partialResult {
	return partialResult{filePath: filePath, reason: err.Error()}
}

func succeed(filePath string, errorsFixed int) partialResult {
	return partialResult{filePath: filePath, success: true, errorsFixed: errorsFixed}
}

func destroySandbox(ctx context.Context, cfg SessionConfig, sandboxID string) {
	if err := cfg.Sandbox.Destroy(ctx, sandboxID); err != nil {
		cfg.Logger.Warn("sandbox destroy failed", "sandbox", sandboxID, "error", err)
	}
}

func runVerification(ctx context.Context, cfg SessionConfig, sandboxPath, filePath string) ([]Finding, error) {
	var all []Finding
	for _, name := range cfg.EnabledTools {
		tool, ok := cfg.QualityTools[name]
		if !ok {
			continue
		}
		findings, err := tool.Run(ctx, sandboxPath, ScopeFile, filePath)
		if err != nil {
			cfg.Logger.Warn("quality tool failed during verify", "tool", name, "error", err)
			continue
		}
		all = append(all, findings...)
	}
	return all, nil
}

func runTests(ctx context.Context, cfg SessionConfig, sandboxPath, filePath string) (bool, string, error) {
	var targets []string
	if cfg.TestValidation == TestValidationQuick && cfg.TestSelector != nil {
		sel, err := cfg.TestSelector.SelectForFile(ctx, sandboxPath, filePath)
		if err != nil {
			return false, "", err
		}
		targets = sel
	}
	if cfg.TestRunner == nil {
		return true, "", nil
	}
	return cfg.TestRunner.Run(ctx, sandboxPath, targets)
}

// resolvedStrictly implements spec.md §4.3 step 4's routing condition:
// post_agent_findings must be a strict subset of original_findings (some
// resolved) with no new findings introduced. A post-agent finding counts as
// new when its tool/code/line/column key is absent from the originals.
func resolvedStrictly(original, post []Finding) (bool, string) {
	origKeys := make(map[string]bool, len(original))
	for _, f := range original {
		origKeys[f.key()] = true
	}

	var newFindings []Finding
	for _, f := range post {
		if !origKeys[f.key()] {
			newFindings = append(newFindings, f)
		}
	}

	someResolved := len(post) < len(original)
	if len(newFindings) > 0 {
		return false, fmt.Sprintf("introduced %d new finding(s)", len(newFindings))
	}
	if !someResolved {
		return false, "no findings resolved"
	}
	return true, ""
}

// remaining returns the findings in original whose key still appears in post.
func remaining(original, post []Finding) []Finding {
	postKeys := make(map[string]bool, len(post))
	for _, f := range post {
		postKeys[f.key()] = true
	}
	var out []Finding
	for _, f := range original {
		if postKeys[f.key()] {
			out = append(out, f)
		}
	}
	return out
}

func agentFailureFeedback(err error, outcome AgentOutcome) string {
	if err != nil {
		return err.Error()
	}
	if outcome.Detail != "" {
		return outcome.Detail
	}
	return "agent reported failure"
}

func firstLine(output string, err error) string {
	if output == "" && err != nil {
		return err.Error()
	}
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		return output[:idx]
	}
	return output
}

func fileStem(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		return base[:idx]
	}
	return base
}
