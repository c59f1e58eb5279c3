package sandbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/stomper/stomper/engine"
)

// GitVCS implements engine.VCS against a git worktree produced by Manager.
type GitVCS struct {
	Git GitRunner
}

// NewGitVCS creates a GitVCS using the real process runner.
func NewGitVCS() *GitVCS {
	return &GitVCS{Git: &DefaultGitRunner{}}
}

// Diff satisfies engine.VCS. Paths are relative to workdir, so the patch
// applies cleanly against any other working tree with the same layout —
// in particular, the main workspace the sandbox was cut from.
func (v *GitVCS) Diff(ctx context.Context, workdir, path string) (string, error) {
	result, err := v.Git.Run(ctx, []string{"diff", "--no-color", "--", path}, workdir)
	if err != nil {
		return "", fmt.Errorf("%w: git diff: %v", engine.ErrPatchConflict, err)
	}
	return result.Stdout, nil
}

// Apply satisfies engine.VCS: it applies patch to workdir's working tree
// and stages the result, per spec.md §4.5 step 1. workdir is left
// untouched when the patch does not apply cleanly (conflict or drift).
func (v *GitVCS) Apply(ctx context.Context, workdir, patch string) error {
	if strings.TrimSpace(patch) == "" {
		return nil
	}
	if _, err := v.Git.RunWithStdin(ctx, []string{"apply", "--index", "-"}, workdir, patch); err != nil {
		return fmt.Errorf("%w: git apply: %v", engine.ErrPatchConflict, err)
	}
	return nil
}

// Commit satisfies engine.VCS.
func (v *GitVCS) Commit(ctx context.Context, workdir string, paths []string, message string) (string, error) {
	addArgs := append([]string{"add"}, paths...)
	if _, err := v.Git.Run(ctx, addArgs, workdir); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	if _, err := v.Git.Run(ctx, []string{"commit", "-m", message}, workdir); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	result, err := v.Git.Run(ctx, []string{"rev-parse", "HEAD"}, workdir)
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(result.Stdout), nil
}
