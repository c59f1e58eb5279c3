package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// world is the shared in-memory fixture backing the fake QualityTool, Agent,
// Sandbox and VCS used across scheduler/processor tests. It lets a single
// test express "file a.x has 2 findings, the agent fixes it on attempt 2"
// without any real git repository or subprocess.
type world struct {
	t *testing.T

	mu             sync.Mutex
	findings       map[string][]Finding
	fileByStem     map[string]string
	missingFile    map[string]bool
	conflictOnFile map[string]bool
	agentAttempts  map[string]int
	behavior       map[string]func(attempt int) bool
	fixedTo        map[string][]Finding // findings remaining after a successful fix; nil = fully resolved
	created        map[string]string
	destroyed      map[string]bool

	concurrent int32
	peak       int32
}

func newWorld(t *testing.T) *world {
	return &world{
		t:              t,
		findings:       make(map[string][]Finding),
		fileByStem:     make(map[string]string),
		missingFile:    make(map[string]bool),
		conflictOnFile: make(map[string]bool),
		agentAttempts:  make(map[string]int),
		behavior:       make(map[string]func(attempt int) bool),
		fixedTo:        make(map[string][]Finding),
		created:        make(map[string]string),
		destroyed:      make(map[string]bool),
	}
}

// addFile registers a file with findings and an agent behavior. succeedOn is
// the attempt number (1-based) on which the agent first succeeds; 0 means
// the agent never succeeds.
func (w *world) addFile(path string, findings []Finding, succeedOn int) {
	w.findings[path] = findings
	w.fileByStem[fileStem(path)] = path
	w.behavior[path] = func(attempt int) bool { return succeedOn > 0 && attempt >= succeedOn }
}

func (w *world) items(maxAttempts int) []FileWorkItem {
	var items []FileWorkItem
	for path, findings := range w.findings {
		items = append(items, FileWorkItem{FilePath: path, Findings: findings, MaxAttempts: maxAttempts})
	}
	return items
}

// --- QualityTool ---

type fakeTool struct{ w *world }

func (fakeTool) Name() string { return "faketool" }

func (f fakeTool) Run(_ context.Context, _ string, scope Scope, paths ...string) ([]Finding, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()

	if scope == ScopeProject {
		var all []Finding
		for _, findings := range f.w.findings {
			all = append(all, findings...)
		}
		return all, nil
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return append([]Finding(nil), f.w.findings[paths[0]]...), nil
}

// --- PromptBuilder ---

// fakePromptBuilder returns the file path itself as the prompt, so the fake
// Agent can identify which file it is being asked to fix without any real
// prompt-template parsing.
type fakePromptBuilder struct{}

func (fakePromptBuilder) Build(_ []Finding, filePath string, _ *Feedback) string { return filePath }

// --- Agent ---

type fakeAgent struct{ w *world }

func (a fakeAgent) Invoke(_ context.Context, prompt, _ string) (AgentOutcome, error) {
	a.w.mu.Lock()
	a.w.agentAttempts[prompt]++
	attempt := a.w.agentAttempts[prompt]
	behave := a.w.behavior[prompt]
	a.w.mu.Unlock()

	if behave == nil || !behave(attempt) {
		return AgentOutcome{Success: false, Detail: "agent could not fix"}, nil
	}

	a.w.mu.Lock()
	if remaining, ok := a.w.fixedTo[prompt]; ok {
		a.w.findings[prompt] = remaining
	} else {
		a.w.findings[prompt] = nil
	}
	a.w.mu.Unlock()
	return AgentOutcome{Success: true}, nil
}

// --- Sandbox ---

type fakeSandbox struct{ w *world }

func stemFromSandboxID(id string) string {
	parts := strings.Split(id, ":")
	if len(parts) < 2 {
		return id
	}
	return parts[1]
}

func (s fakeSandbox) Create(_ context.Context, id, _ string) (string, error) {
	stem := stemFromSandboxID(id)
	s.w.mu.Lock()
	file, ok := s.w.fileByStem[stem]
	missing := ok && s.w.missingFile[file]
	s.w.mu.Unlock()

	dir := s.w.t.TempDir()
	if ok && !missing {
		full := filepath.Join(dir, file)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(full, []byte("stub\n"), 0o644); err != nil {
			return "", err
		}
	}

	s.w.mu.Lock()
	s.w.created[id] = dir
	s.w.mu.Unlock()

	n := atomic.AddInt32(&s.w.concurrent, 1)
	for {
		peak := atomic.LoadInt32(&s.w.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&s.w.peak, peak, n) {
			break
		}
	}
	return dir, nil
}

func (s fakeSandbox) Destroy(_ context.Context, id string) error {
	atomic.AddInt32(&s.w.concurrent, -1)
	s.w.mu.Lock()
	s.w.destroyed[id] = true
	s.w.mu.Unlock()
	return nil
}

// --- VCS ---

type fakeVCS struct{ w *world }

func (v fakeVCS) Diff(_ context.Context, _ string, path string) (string, error) {
	v.w.mu.Lock()
	defer v.w.mu.Unlock()
	if len(v.w.findings[path]) > 0 {
		return "", nil
	}
	// Only a fully resolved file (no findings left) counts as a change
	// worth diffing in these fixtures; a file with any finding remaining
	// yields an empty diff above.
	return "patch:" + path, nil
}

func (v fakeVCS) Apply(_ context.Context, _ string, patch string) error {
	file := strings.TrimPrefix(patch, "patch:")
	v.w.mu.Lock()
	conflict := v.w.conflictOnFile[file]
	v.w.mu.Unlock()
	if conflict {
		return errors.New("simulated base drift")
	}
	return nil
}

func (v fakeVCS) Commit(_ context.Context, _ string, paths []string, _ string) (string, error) {
	if len(paths) != 1 {
		return "", fmt.Errorf("expected exactly one path, got %d", len(paths))
	}
	return "rev-" + paths[0], nil
}

func baseConfig(w *world) SessionConfig {
	return SessionConfig{
		QualityTools:  map[string]QualityTool{"faketool": fakeTool{w}},
		EnabledTools:  []string{"faketool"},
		PromptBuilder: fakePromptBuilder{},
		Agent:         fakeAgent{w},
		Sandbox:       fakeSandbox{w},
		VCS:           fakeVCS{w},
		TargetRoot:    "/main/workspace",
	}
}

func finding(code string, line int) Finding {
	return Finding{Tool: "faketool", Code: code, Message: code, Line: line, Severity: SeverityError}
}
