// Package engine implements the Parallel Per-File Fix Orchestrator: the
// bounded-concurrency fan-out/fan-in workflow that dispatches one isolated
// fix attempt per file with findings, verifies and tests the result, and
// serially applies successful diffs to the main workspace.
package engine

import "fmt"

// Severity classifies how serious a Finding is.
type Severity string

// Recognized severities, ordered least to most serious.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Scope tells a QualityTool whether to analyze the whole project or a single
// file (used when re-running tools inside a sandbox during verify).
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeFile    Scope = "file"
)

// Finding is a single machine-readable diagnostic from a quality tool.
// Findings are immutable once produced.
type Finding struct {
	Tool        string
	Code        string
	Message     string
	FilePath    string
	Severity    Severity
	Line        int
	Column      int
	AutoFixable bool
}

// key identifies a Finding for set-membership comparisons (resolved vs.
// introduced) independent of message wording, which agents may not preserve.
func (f Finding) key() string {
	return fmt.Sprintf("%s:%s:%d:%d", f.Tool, f.Code, f.Line, f.Column)
}

// FileWorkItem is the unit of work dispatched to one branch: a file and the
// findings against it, plus this file's retry bookkeeping.
type FileWorkItem struct {
	FilePath     string
	Findings     []Finding
	AttemptsUsed int
	MaxAttempts  int
	LastFeedback string
}

// Outcome is the terminal state of a branch.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// BranchState is the per-branch working record for one file's fix attempt.
// Each branch owns an independent copy; branches never observe each other's
// mutations. Only each branch's partialResult reaches SessionState, folded in
// by mergeReducer.
type BranchState struct {
	SessionID         string
	WorkItem          FileWorkItem
	SandboxID         string
	Prompt            string
	PostAgentFindings []Finding
	Diff              string
	Outcome           Outcome
	FailureReason     string
	ErrorsFixed       int
}

// clone returns an independently owned copy of the branch state, suitable
// for handing to a new branch goroutine bound to its own FileWorkItem.
func (b BranchState) clone(item FileWorkItem) BranchState {
	nb := b
	nb.WorkItem = item
	nb.WorkItem.Findings = append([]Finding(nil), item.Findings...)
	nb.PostAgentFindings = nil
	nb.Diff = ""
	nb.Outcome = ""
	nb.FailureReason = ""
	nb.ErrorsFixed = 0
	return nb
}

// FailedFix records why a file's fix attempt did not produce a commit.
type FailedFix struct {
	FilePath string
	Reason   string
}

// SessionState is the root state of one orchestrator run. SuccessfulFixes,
// FailedFixes and TotalErrorsFixed are the only fields mutated by parallel
// branches; they are merged through associative, commutative reducers
// (concatenation for the sequences, sum for the count) so branch completion
// order never affects the final aggregate.
type SessionState struct {
	SessionID        string
	BaseRevision     string
	EnabledTools     []string
	Files            []FileWorkItem
	SuccessfulFixes  []string
	FailedFixes      []FailedFix
	TotalErrorsFixed int
}

// partialResult is what a branch returns to the scheduler: exactly one of a
// success or a failure contribution, per spec.md §4.3's File Processor
// contract.
type partialResult struct {
	filePath    string
	reason      string
	errorsFixed int
	success     bool
}

// mergeReducer folds branch partial results into the session aggregates.
// It is associative and commutative: applying it over any partitioning or
// ordering of branch outcomes yields the same SessionState aggregates.
func mergeReducer(s *SessionState, r partialResult) {
	if r.success {
		s.SuccessfulFixes = append(s.SuccessfulFixes, r.filePath)
		s.TotalErrorsFixed += r.errorsFixed
		return
	}
	s.FailedFixes = append(s.FailedFixes, FailedFix{FilePath: r.filePath, Reason: r.reason})
}
