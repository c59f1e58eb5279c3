package engine

import "errors"

// Sentinel errors identifying the failure taxonomy of spec.md §7. Branch
// code wraps these with fmt.Errorf("%w: ...") so errors.Is still resolves
// the kind while the message carries per-file detail, the same convention
// the teacher uses for its wt.Err* sentinels.
var (
	// ErrToolFailure means a quality tool crashed or returned malformed
	// output. It is a session-level warning, not a branch failure: the
	// tool simply contributes no findings.
	ErrToolFailure = errors.New("quality tool failure")

	// ErrSandboxFailure means Sandbox.Create or Sandbox.Destroy failed.
	ErrSandboxFailure = errors.New("sandbox failure")

	// ErrAgentFailure means the Agent returned an error, reported
	// failure, or timed out.
	ErrAgentFailure = errors.New("agent unable to fix")

	// ErrVerificationFailure means post-agent findings did not improve.
	ErrVerificationFailure = errors.New("no progress")

	// ErrTestFailure means the test run failed inside the sandbox.
	ErrTestFailure = errors.New("tests regressed")

	// ErrPatchConflict means the diff applied cleanly in the sandbox but
	// failed to apply to the main workspace (base drifted, or a prior
	// branch's commit touched overlapping context). Never retried.
	ErrPatchConflict = errors.New("patch no longer applies")

	// ErrNoChange means the agent produced an empty diff with no
	// corresponding resolution of findings.
	ErrNoChange = errors.New("agent produced no change")

	// ErrFileMissing means the file disappeared between collection and
	// processing.
	ErrFileMissing = errors.New("file missing")
)
