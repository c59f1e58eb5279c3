package engine

import (
	"context"
	"fmt"
)

// ScanResult is the outcome of enumerating findings without fixing
// anything: the grouped work list plus any tool-level warnings from
// collection.
type ScanResult struct {
	Files    []FileWorkItem
	Warnings []error
}

// Scan runs C7 (the Error Collector) against config.TargetRoot and returns
// the resulting per-file work list, without dispatching any branch. It is
// the core's half of the CLI's "scan" subcommand: a fixing session's
// initialize → collect_errors prefix, stopped before fan-out.
func Scan(ctx context.Context, config SessionConfig) (*ScanResult, error) {
	cfg := config.withDefaults()
	if cfg.TargetRoot == "" {
		return nil, fmt.Errorf("engine: TargetRoot is required")
	}

	files, warnings := collectErrors(ctx, cfg)
	return &ScanResult{Files: files, Warnings: warnings}, nil
}
