// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/maarten-devries/SRAgent/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or scaffold sragent configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Show prints the configuration sragent would run with, after merging the
config file, environment variables, and .secrets/. Secret values are
redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		redact(&cfg)
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file with defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "sragent.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		out, err := yaml.Marshal(defaultConfig())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func defaultConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Entrez: types.EntrezConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 30 * time.Second, UserAgent: "sragent/" + version},
			MaxRetries: 5,
		},
		WebSearch: types.WebSearchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 30 * time.Second, UserAgent: "sragent/" + version},
			MaxResults: 4,
		},
		Summarize: types.SummarizeConfig{Enabled: true},
		Resolve:   types.ResolveConfig{StepBudget: 40, WebSearchResults: 4},
		Batch: types.BatchConfig{
			MaxConcurrency: 3,
			OutputPath:     "results.jsonl",
			StorePath:      "processed.db",
		},
	}
}

func redact(cfg *types.PipelineConfig) {
	for i := range cfg.Entrez.APIKeys {
		cfg.Entrez.APIKeys[i] = "(redacted)"
	}
	if cfg.WebSearch.APIKey != "" {
		cfg.WebSearch.APIKey = "(redacted)"
	}
	if cfg.Summarize.APIKey != "" {
		cfg.Summarize.APIKey = "(redacted)"
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}
