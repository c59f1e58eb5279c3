package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stomper/stomper/engine"
	"github.com/stomper/stomper/quality"
)

var scanTools []string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Collect findings and print the per-file work list without fixing anything",
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

		tools := scanTools
		if len(tools) == 0 {
			tools = fileCfg.Tools
		}
		if len(tools) == 0 {
			tools = []string{"golangci-lint", "go-vet"}
		}

		result, err := engine.Scan(cmd.Context(), engine.SessionConfig{
			Logger: log,
			QualityTools: map[string]engine.QualityTool{
				"golangci-lint": quality.NewGolangCILint(),
				"go-vet":        quality.NewGoVet(),
			},
			EnabledTools: tools,
			TargetRoot:   root,
		})
		if err != nil {
			return err
		}

		printScanResult(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringSliceVar(&scanTools, "tools", nil, "Quality tools to run (default: golangci-lint,go-vet)")
}

func printScanResult(r *engine.ScanResult) {
	fmt.Printf("=== Stomper Scan ===\n")
	fmt.Printf("Files with findings: %d\n\n", len(r.Files))

	for _, item := range r.Files {
		fmt.Printf("  %s — %d finding(s)\n", item.FilePath, len(item.Findings))
		for _, f := range item.Findings {
			fmt.Printf("      [%s/%s] %d:%d — %s\n", f.Tool, f.Code, f.Line, f.Column, f.Message)
		}
	}

	for _, w := range r.Warnings {
		fmt.Printf("\nwarning: %v\n", w)
	}
}
