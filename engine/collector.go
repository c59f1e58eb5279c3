package engine

import (
	"context"
	"fmt"
	"sort"
)

// collectErrors runs each enabled tool once against the main workspace (no
// sandboxing), groups the resulting findings by file, and returns one
// FileWorkItem per file with at least one finding. A tool that fails
// contributes no findings and is reported as a session-level warning; it
// never aborts collection.
func collectErrors(ctx context.Context, cfg SessionConfig) ([]FileWorkItem, []error) {
	byFile := make(map[string][]Finding)
	var order []string
	var warnings []error

	for _, name := range cfg.EnabledTools {
		tool, ok := cfg.QualityTools[name]
		if !ok {
			warnings = append(warnings, fmt.Errorf("%w: tool %q not registered", ErrToolFailure, name))
			continue
		}

		findings, err := tool.Run(ctx, cfg.TargetRoot, ScopeProject)
		if err != nil {
			cfg.Logger.Warn("quality tool failed", "tool", name, "error", err)
			warnings = append(warnings, fmt.Errorf("%w: %s: %v", ErrToolFailure, name, err))
			continue
		}

		for _, f := range findings {
			if _, seen := byFile[f.FilePath]; !seen {
				order = append(order, f.FilePath)
			}
			byFile[f.FilePath] = append(byFile[f.FilePath], f)
		}
	}

	// Sort file order for determinism independent of tool iteration order;
	// dispatch order itself carries no semantic meaning (spec.md §4.1), but
	// deterministic collection output makes tests reproducible.
	sort.Strings(order)

	items := make([]FileWorkItem, 0, len(order))
	for _, path := range order {
		items = append(items, FileWorkItem{
			FilePath:    path,
			Findings:    byFile[path],
			MaxAttempts: cfg.MaxAttemptsPerFile,
		})
	}
	return items, warnings
}
