package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run executes one full orchestrator session: initialize → collect_errors →
// fan_out(files) ⇉ [file_processor × N in parallel] → aggregate (deferred)
// → cleanup. No file is dispatched twice; at most config.MaxParallelFiles
// branches execute concurrently, enforced by a counting semaphore owned by
// the scheduler.
func Run(ctx context.Context, config SessionConfig) (*SessionResult, error) {
	start := time.Now()
	cfg := config.withDefaults()

	if err := validateCollaborators(cfg); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	cfg.Logger.Info("session starting", "session", sessionID, "root", cfg.TargetRoot, "maxParallel", cfg.MaxParallelFiles)

	files, warnings := collectErrors(ctx, cfg)
	for _, w := range warnings {
		cfg.Logger.Warn("collection warning", "error", w)
	}

	state := SessionState{
		SessionID:    sessionID,
		EnabledTools: cfg.EnabledTools,
		Files:        files,
	}

	cfg.Logger.Info("collected work items", "files", len(files))

	if len(files) == 0 || cfg.DryRun {
		return aggregate(&state, start), nil
	}

	app := newApplicator(cfg.VCS)

	sem := make(chan struct{}, cfg.MaxParallelFiles)
	results := make(chan partialResult, len(files))

	var wg sync.WaitGroup
	var dispatchMu sync.Mutex
	halted := false

dispatch:
	for _, item := range files {
		// Acquire the slot first so the halt check sees any failure from a
		// branch that finished while this loop was waiting for capacity.
		sem <- struct{}{}

		dispatchMu.Lock()
		stop := halted
		dispatchMu.Unlock()
		if stop {
			<-sem
			break dispatch
		}

		select {
		case <-ctx.Done():
			<-sem
			break dispatch
		default:
		}

		wg.Add(1)
		go func(item FileWorkItem) {
			defer wg.Done()
			defer func() { <-sem }()

			r := processFile(ctx, cfg, app, sessionID, item)
			results <- r

			if !cfg.ContinueOnError && !r.success {
				dispatchMu.Lock()
				halted = true
				dispatchMu.Unlock()
			}
		}(item)
	}

	// aggregate is a deferred node: it must not run until every dispatched
	// branch has terminated, success or failure.
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		mergeReducer(&state, r)
	}

	result := aggregate(&state, start)
	cfg.Logger.Info("session complete",
		"session", sessionID,
		"succeeded", len(result.SuccessfulFixes),
		"failed", len(result.FailedFixes),
		"errorsFixed", result.TotalErrorsFixed,
		"wallTimeMs", result.WallTimeMs,
	)
	return result, nil
}

func validateCollaborators(cfg SessionConfig) error {
	switch {
	case cfg.Sandbox == nil:
		return fmt.Errorf("engine: Sandbox capability is required")
	case cfg.VCS == nil:
		return fmt.Errorf("engine: VCS capability is required")
	case cfg.Agent == nil:
		return fmt.Errorf("engine: Agent capability is required")
	case cfg.PromptBuilder == nil:
		return fmt.Errorf("engine: PromptBuilder capability is required")
	case cfg.TargetRoot == "":
		return fmt.Errorf("engine: TargetRoot is required")
	}
	return nil
}
