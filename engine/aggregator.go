package engine

import "time"

// aggregate runs exactly once, after every dispatched branch has
// terminated. By this point state's reducer-backed fields already hold the
// concatenated/summed aggregates; aggregate's job is to validate the
// invariant from spec.md §3, len(successful)+len(failed) <= len(files)
// (panicking if it is violated), and build the SessionResult. Run logs the
// totals afterward.
func aggregate(state *SessionState, start time.Time) *SessionResult {
	if got, want := len(state.SuccessfulFixes)+len(state.FailedFixes), len(state.Files); got > want {
		panic("engine: aggregate invariant violated: more outcomes than dispatched files")
	}

	return &SessionResult{
		SessionID:        state.SessionID,
		BaseRevision:     state.BaseRevision,
		SuccessfulFixes:  append([]string(nil), state.SuccessfulFixes...),
		FailedFixes:      append([]FailedFix(nil), state.FailedFixes...),
		TotalErrorsFixed: state.TotalErrorsFixed,
		WallTimeMs:       wallTime(start),
	}
}
