package engine

import "context"

// QualityTool runs a static-analysis tool and reports structured findings.
// Implementations must be side-effect-free: Run never mutates targetRoot.
type QualityTool interface {
	// Name identifies the tool for logging and Finding.Tool tagging.
	Name() string

	// Run executes the tool against targetRoot. When scope is ScopeFile,
	// paths names the single file to restrict analysis to; when
	// ScopeProject, paths is ignored and the whole tree is analyzed.
	Run(ctx context.Context, targetRoot string, scope Scope, paths ...string) ([]Finding, error)
}

// Feedback summarizes a failed verification attempt so the next prompt can
// be adapted instead of repeating the same instructions verbatim.
type Feedback struct {
	Remaining []Finding
	New       []Finding
	ToolNote  string
}

// PromptBuilder turns a set of findings (and, on retries, prior feedback)
// into a fix instruction for the Agent. Build must be deterministic for
// fixed inputs.
type PromptBuilder interface {
	Build(findings []Finding, filePath string, feedback *Feedback) string
}

// AgentOutcome is the opaque result of one Agent.Invoke call. The core only
// inspects Success; everything else is diagnostic.
type AgentOutcome struct {
	Success bool
	Detail  string
}

// Agent mutates files in workingDir in an attempt to satisfy prompt. It may
// time out; the core treats any non-nil error or Success=false identically
// as an attempt failure that consumes one retry. Agent must never touch git
// history (branches, commits, refs) — only the working tree.
type Agent interface {
	Invoke(ctx context.Context, prompt, workingDir string) (AgentOutcome, error)
}

// Sandbox creates and destroys ephemeral, isolated working copies of the
// repository. Distinct ids never share a working directory, and Destroy
// must be idempotent and safe to call even when Create partially failed.
type Sandbox interface {
	Create(ctx context.Context, id, baseRevision string) (path string, err error)
	Destroy(ctx context.Context, id string) error
}

// VCS is the version-control capability the core needs to extract, apply
// and commit a single file's patch.
type VCS interface {
	// Diff returns a unified patch between workdir's working tree and the
	// revision it was created from, scoped to path. An unchanged file
	// yields an empty string.
	Diff(ctx context.Context, workdir, path string) (string, error)

	// Apply applies patch to workdir's working tree. A conflict or drift
	// returns a non-nil error; workdir is left unmodified on failure.
	Apply(ctx context.Context, workdir, patch string) error

	// Commit stages paths and creates a single commit with message,
	// returning the new revision id.
	Commit(ctx context.Context, workdir string, paths []string, message string) (string, error)
}
