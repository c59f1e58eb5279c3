package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrSandboxExists is returned when Create is called with an id that
	// already has a live worktree.
	ErrSandboxExists = errors.New("sandbox already exists")
	// ErrSandboxNotFound is returned when Destroy is called with an
	// unknown id.
	ErrSandboxNotFound = errors.New("sandbox not found")
)

// Manager creates and destroys ephemeral git worktrees pinned to a base
// revision, one per sandbox id. It implements engine.Sandbox.
type Manager struct {
	git      GitRunner
	repoPath string // path to the source repository worktrees are cut from
	rootDir  string // directory under which ephemeral worktrees are created

	mu    sync.Mutex
	paths map[string]string // sandbox id -> worktree path
}

// Option configures a Manager.
type Option func(*Manager)

// WithGitRunner sets a custom git runner.
func WithGitRunner(r GitRunner) Option {
	return func(m *Manager) { m.git = r }
}

// NewManager creates a Manager that cuts worktrees from repoPath into
// rootDir.
func NewManager(repoPath, rootDir string, opts ...Option) *Manager {
	m := &Manager{
		git:      &DefaultGitRunner{},
		repoPath: repoPath,
		rootDir:  rootDir,
		paths:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// atomicOp accumulates undo steps and runs them in reverse on failure,
// mirroring the rollback-on-failure discipline used for worktree creation.
type atomicOp struct {
	undoSteps []func()
	committed bool
}

func (op *atomicOp) addUndo(fn func()) { op.undoSteps = append(op.undoSteps, fn) }
func (op *atomicOp) commit()           { op.committed = true }
func (op *atomicOp) rollback() {
	if op.committed {
		return
	}
	for i := len(op.undoSteps) - 1; i >= 0; i-- {
		op.undoSteps[i]()
	}
}

// Create checks out baseRevision into a fresh detached worktree for id.
// Satisfies engine.Sandbox.
func (m *Manager) Create(ctx context.Context, id, baseRevision string) (string, error) {
	if baseRevision == "" {
		baseRevision = "HEAD"
	}
	path := filepath.Join(m.rootDir, sanitizeID(id))

	m.mu.Lock()
	if _, exists := m.paths[id]; exists {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrSandboxExists, id)
	}
	m.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrSandboxExists, id)
	}

	op := &atomicOp{}
	defer op.rollback()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create sandbox parent dir: %w", err)
	}

	if _, err := m.git.Run(ctx, []string{
		"worktree", "add", "--detach", path, baseRevision,
	}, m.repoPath); err != nil {
		return "", fmt.Errorf("create worktree for %s: %w", id, err)
	}
	op.addUndo(func() {
		m.git.Run(ctx, []string{"worktree", "remove", "--force", path}, m.repoPath)
	})

	m.mu.Lock()
	m.paths[id] = path
	m.mu.Unlock()

	op.commit()
	return path, nil
}

// Destroy removes the worktree previously created for id. Satisfies
// engine.Sandbox.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	path, ok := m.paths[id]
	if ok {
		delete(m.paths, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSandboxNotFound, id)
	}

	if _, err := m.git.Run(ctx, []string{"worktree", "remove", "--force", path}, m.repoPath); err != nil {
		return fmt.Errorf("remove worktree for %s: %w", id, err)
	}
	return nil
}

// sanitizeID replaces path-unsafe separators in a sandbox id
// ("session:stem:uuid") so it can be used as a single directory component.
func sanitizeID(id string) string {
	return strings.ReplaceAll(id, string(filepath.Separator), "_")
}
