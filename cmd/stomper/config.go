package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig holds the on-disk .stomper.yaml configuration, merged with
// flag values before building an engine.SessionConfig.
type FileConfig struct {
	Tools              []string `yaml:"tools"`
	MaxParallelFiles   int      `yaml:"max_parallel_files"`
	MaxAttemptsPerFile int      `yaml:"max_attempts_per_file"`
	TestValidation     string   `yaml:"test_validation"`
	ContinueOnError    *bool    `yaml:"continue_on_error"`
	AgentCommand       string   `yaml:"agent_command"`
	AgentArgs          []string `yaml:"agent_args"`
	AgentBudgetUSD     float64  `yaml:"agent_budget_usd"`
	UseSandbox         *bool    `yaml:"use_sandbox"`
}

// loadFileConfig loads .stomper.yaml from path. A missing file yields a
// zero-value FileConfig so callers fall back entirely to flag defaults.
func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(root string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(root, ".stomper.yaml")
}
