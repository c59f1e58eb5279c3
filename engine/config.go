package engine

import (
	"context"
	"log/slog"
	"time"
)

// TestValidation controls how much of the test suite runs after an agent
// attempt, per spec.md §4.3 step 5.
type TestValidation string

const (
	// TestValidationFull runs the whole suite for every file.
	TestValidationFull TestValidation = "full"
	// TestValidationQuick runs only tests selected by a proximity
	// heuristic to the changed file. The heuristic is delegated to the
	// TestSelector capability and is intentionally opaque to the core
	// (spec.md §9, Open Questions).
	TestValidationQuick TestValidation = "quick"
	// TestValidationFinal skips per-file testing; the driver is expected
	// to run the suite once after all files are processed.
	TestValidationFinal TestValidation = "final"
	// TestValidationNone skips test validation entirely.
	TestValidationNone TestValidation = "none"
)

// DefaultMaxParallelFiles is used when SessionConfig.MaxParallelFiles is unset.
const DefaultMaxParallelFiles = 4

// MaxMaxParallelFiles is the upper bound accepted for MaxParallelFiles.
const MaxMaxParallelFiles = 32

// DefaultMaxAttempts is used when SessionConfig.MaxAttemptsPerFile is unset.
const DefaultMaxAttempts = 3

// SessionConfig configures one orchestrator run. It is set once at
// initialization and never mutated by parallel branches.
type SessionConfig struct {
	// Logger receives structured progress output. Defaults to slog.Default().
	Logger *slog.Logger

	// Collaborators. QualityTools is keyed by tool name; only tools named
	// in EnabledTools are invoked.
	QualityTools  map[string]QualityTool
	PromptBuilder PromptBuilder
	Agent         Agent
	Sandbox       Sandbox
	VCS           VCS
	TestRunner    TestRunner
	TestSelector  TestSelector

	EnabledTools []string
	TargetRoot   string

	MaxParallelFiles   int
	MaxAttemptsPerFile int
	TestValidation     TestValidation
	ContinueOnError    bool
	UseSandbox         bool

	// AgentBudgetUSD is forwarded opaquely to Agent implementations that
	// care about cost; the core never inspects it.
	AgentBudgetUSD float64

	// DryRun enumerates the work list and returns without invoking any
	// agent, sandbox, or VCS capability.
	DryRun bool
}

// TestRunner executes the project's test suite inside a sandbox. Returning
// a non-nil error or ok=false both count as a test failure.
type TestRunner interface {
	Run(ctx context.Context, workdir string, targets []string) (ok bool, output string, err error)
}

// TestSelector picks the tests relevant to one changed file, implementing
// the "quick" proximity heuristic of spec.md §4.3 step 5. The heuristic
// itself is delegated and unspecified by the core; see spec.md §9.
type TestSelector interface {
	SelectForFile(ctx context.Context, workdir, filePath string) ([]string, error)
}

// withDefaults returns a copy of cfg with zero-valued fields replaced by
// their documented defaults.
func (cfg SessionConfig) withDefaults() SessionConfig {
	if cfg.MaxParallelFiles <= 0 {
		cfg.MaxParallelFiles = DefaultMaxParallelFiles
	}
	if cfg.MaxParallelFiles > MaxMaxParallelFiles {
		cfg.MaxParallelFiles = MaxMaxParallelFiles
	}
	if cfg.MaxAttemptsPerFile <= 0 {
		cfg.MaxAttemptsPerFile = DefaultMaxAttempts
	}
	if cfg.TestValidation == "" {
		cfg.TestValidation = TestValidationNone
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// SessionResult is the outcome of one orchestrator run.
type SessionResult struct {
	SessionID        string
	BaseRevision     string
	SuccessfulFixes  []string
	FailedFixes      []FailedFix
	TotalErrorsFixed int
	WallTimeMs       int64
}

// wallTime measures elapsed time in milliseconds from start to now.
func wallTime(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
