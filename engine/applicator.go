package engine

import (
	"context"
	"fmt"
	"sync"
)

// applicator serializes diff application across all branches of a session.
// Only one branch may execute applyAndCommit at a time; the bound is
// independent of max_parallel_files (agents keep fixing concurrently, their
// patches just land one at a time).
type applicator struct {
	vcs VCS
	mu  sync.Mutex
}

func newApplicator(vcs VCS) *applicator {
	return &applicator{vcs: vcs}
}

// applyAndCommit applies diff to the main workspace at workdir and commits
// filePath atomically. It never holds the mutex across any suspension point
// other than the apply+commit pair itself.
func (a *applicator) applyAndCommit(ctx context.Context, workdir, filePath, diff string) (revision string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.vcs.Apply(ctx, workdir, diff); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPatchConflict, err)
	}

	rev, err := a.vcs.Commit(ctx, workdir, []string{filePath}, commitMessage(filePath))
	if err != nil {
		return "", fmt.Errorf("%w: commit failed: %v", ErrPatchConflict, err)
	}
	return rev, nil
}

// commitMessage builds the per-file commit message. The format is not
// required to be bit-exact, only unique enough to identify the file
// (spec.md §4.5 step 3).
func commitMessage(filePath string) string {
	return fmt.Sprintf("fix(quality): %s", fileName(filePath))
}

func fileName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
