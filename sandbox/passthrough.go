package sandbox

import "context"

// Passthrough implements engine.Sandbox by handing back the main workspace
// path for every sandbox id instead of an isolated worktree. It backs
// SessionConfig.UseSandbox=false: the diff-applicator mutex then becomes
// the only thing protecting the workspace, since every "sandbox" is really
// just the one real working tree.
type Passthrough struct {
	repoPath string
}

// NewPassthrough returns a Passthrough rooted at repoPath.
func NewPassthrough(repoPath string) *Passthrough {
	return &Passthrough{repoPath: repoPath}
}

// Create ignores id and baseRevision and returns the workspace path
// unchanged; there is nothing to check out.
func (p *Passthrough) Create(ctx context.Context, id, baseRevision string) (string, error) {
	return p.repoPath, nil
}

// Destroy is a no-op: there is no ephemeral state to remove.
func (p *Passthrough) Destroy(ctx context.Context, id string) error {
	return nil
}
