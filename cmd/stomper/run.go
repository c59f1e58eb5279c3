package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stomper/stomper/agent"
	"github.com/stomper/stomper/engine"
	"github.com/stomper/stomper/promptbuilder"
	"github.com/stomper/stomper/quality"
	"github.com/stomper/stomper/sandbox"
)

var (
	runTools           []string
	runMaxParallel     int
	runMaxAttempts     int
	runTestValidation  string
	runContinueOnError bool
	runAgentCommand    string
	runAgentArgs       []string
	runAgentBudget     float64
	runDryRun          bool
	runUseSandbox      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect findings and fix them, one file at a time, in parallel",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRepoRoot()
		if err != nil {
			return err
		}
		log := newLogger()

		fileCfg, err := loadFileConfig(resolveConfigPath(root))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		tools := runTools
		if len(tools) == 0 {
			tools = fileCfg.Tools
		}
		if len(tools) == 0 {
			tools = []string{"golangci-lint", "go-vet"}
		}

		maxParallel := runMaxParallel
		if maxParallel == 0 {
			maxParallel = fileCfg.MaxParallelFiles
		}
		maxAttempts := runMaxAttempts
		if maxAttempts == 0 {
			maxAttempts = fileCfg.MaxAttemptsPerFile
		}
		testValidation := runTestValidation
		if testValidation == "" {
			testValidation = fileCfg.TestValidation
		}
		continueOnError := runContinueOnError
		if fileCfg.ContinueOnError != nil {
			continueOnError = *fileCfg.ContinueOnError
		}
		agentCommand := runAgentCommand
		if agentCommand == "" {
			agentCommand = fileCfg.AgentCommand
		}
		agentArgs := runAgentArgs
		if len(agentArgs) == 0 {
			agentArgs = fileCfg.AgentArgs
		}
		agentBudget := runAgentBudget
		if agentBudget == 0 {
			agentBudget = fileCfg.AgentBudgetUSD
		}

		useSandbox := runUseSandbox
		if fileCfg.UseSandbox != nil {
			useSandbox = *fileCfg.UseSandbox
		}

		var sandboxCap engine.Sandbox
		if useSandbox {
			sandboxRoot := filepath.Join(os.TempDir(), "stomper-sandboxes")
			if err := os.MkdirAll(sandboxRoot, 0o755); err != nil {
				return fmt.Errorf("create sandbox root: %w", err)
			}
			sandboxCap = sandbox.NewManager(root, sandboxRoot)
		} else {
			log.Warn("sandboxing disabled: agents will mutate the main workspace directly")
			sandboxCap = sandbox.NewPassthrough(root)
		}

		cfg := engine.SessionConfig{
			Logger: log,
			QualityTools: map[string]engine.QualityTool{
				"golangci-lint": quality.NewGolangCILint(),
				"go-vet":        quality.NewGoVet(),
			},
			PromptBuilder:      promptbuilder.Default{},
			Agent:              agent.NewCLIProvider(agent.CommandSpec{Name: agentCommand, Args: agentArgs, BudgetUSD: agentBudget}),
			Sandbox:            sandboxCap,
			VCS:                sandbox.NewGitVCS(),
			TestRunner:         goTestRunner{},
			TestSelector:       packageTestSelector{},
			EnabledTools:       tools,
			TargetRoot:         root,
			MaxParallelFiles:   maxParallel,
			MaxAttemptsPerFile: maxAttempts,
			TestValidation:     engine.TestValidation(testValidation),
			ContinueOnError:    continueOnError,
			UseSandbox:         useSandbox,
			AgentBudgetUSD:     agentBudget,
			DryRun:             runDryRun,
		}

		if cfg.DryRun {
			scanResult, err := engine.Scan(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printScanResult(scanResult)
			return nil
		}

		result, err := engine.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		printRunResult(result)

		if cfg.TestValidation == engine.TestValidationFinal {
			if err := runFinalTests(cmd.Context(), log, root); err != nil {
				return err
			}
		}
		return nil
	},
}

// runFinalTests runs the full suite once against root after every file has
// been processed, the "final" half of spec.md §4.3 step 5's test_validation
// modes that the core deliberately leaves to the driver rather than running
// per file.
func runFinalTests(ctx context.Context, log *slog.Logger, root string) error {
	log.Info("running full test suite after session", "mode", "final")
	ok, output, err := (goTestRunner{}).Run(ctx, root, []string{"./..."})
	if err != nil {
		return fmt.Errorf("final test run: %w", err)
	}
	if !ok {
		fmt.Println(output)
		return fmt.Errorf("final test run failed")
	}
	log.Info("final test suite passed")
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVar(&runTools, "tools", nil, "Quality tools to run (default: golangci-lint,go-vet)")
	runCmd.Flags().IntVar(&runMaxParallel, "max-parallel", 0, "Maximum files processed concurrently")
	runCmd.Flags().IntVar(&runMaxAttempts, "max-attempts", 0, "Maximum agent attempts per file")
	runCmd.Flags().StringVar(&runTestValidation, "test-validation", "", "Test validation mode: full, quick, final, none")
	runCmd.Flags().BoolVar(&runContinueOnError, "continue-on-error", true, "Keep dispatching new files after a failure")
	runCmd.Flags().StringVar(&runAgentCommand, "agent-command", "claude", "Coding-agent CLI to invoke per attempt")
	runCmd.Flags().StringSliceVar(&runAgentArgs, "agent-args", nil, "Extra arguments passed to the agent CLI")
	runCmd.Flags().Float64Var(&runAgentBudget, "agent-budget", 0, "Cost budget forwarded to the agent, in USD")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Collect findings and print the work list without fixing anything")
	runCmd.Flags().BoolVar(&runUseSandbox, "use-sandbox", true, "Isolate each fix attempt in an ephemeral git worktree")
}

func printRunResult(r *engine.SessionResult) {
	fmt.Printf("=== Stomper Session %s ===\n", r.SessionID)
	fmt.Printf("Succeeded: %d  Failed: %d  Errors fixed: %d  Wall time: %dms\n\n",
		len(r.SuccessfulFixes), len(r.FailedFixes), r.TotalErrorsFixed, r.WallTimeMs)

	for _, f := range r.SuccessfulFixes {
		fmt.Printf("  [OK]   %s\n", f)
	}
	for _, f := range r.FailedFixes {
		fmt.Printf("  [FAIL] %s — %s\n", f.FilePath, f.Reason)
	}
}
