// Command stomper runs an automated, parallel per-file quality-finding fix
// session against a Go repository.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	repoRoot   string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "stomper",
	Short: "Parallel per-file quality-finding fix orchestrator",
	Long: `Stomper collects static-analysis findings across a repository,
fans out one isolated agent attempt per affected file, verifies each fix,
and commits the ones that resolve their findings without regressions.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repoRoot, "repo-root", "", "Repository root (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to .stomper.yaml (default: <repo-root>/.stomper.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveRepoRoot() (string, error) {
	if repoRoot != "" {
		return repoRoot, nil
	}
	return os.Getwd()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
