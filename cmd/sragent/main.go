// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sragent CLI: resolving
// sequence-data accessions (SRA, GEO, ArrayExpress) to the publication
// that describes them.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maarten-devries/SRAgent/internal/secrets"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the sragent CLI.
var rootCmd = &cobra.Command{
	Use:   "sragent",
	Short: "Resolve sequence-data accessions to their publication",
	Long: `sragent finds the publication associated with SRA, GEO, BioProject, and
ArrayExpress accessions: a (PMID, PMCID) pair or, when the study is only on
a preprint server, a preprint DOI.

Resolution tries directly linked publications first (GEO pages, ArrayExpress
records, Entrez links), then title and web search with author verification,
then preprint servers. Use resolve for one study, batch for a CSV of
studies, and eval for the labeled regression suite.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments use .secrets/ or env vars.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sragent.yaml or ~/.config/sragent/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sragent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sragent"))
		}
	}

	viper.SetEnvPrefix("SRAGENT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles stage configuration from the config file, the
// environment, and .secrets/.
func pipelineConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: "sragent/" + version,
	}
	if httpCfg.Timeout <= 0 {
		httpCfg.Timeout = 30 * time.Second
	}

	apiKeys := viper.GetStringSlice("entrez.api_keys")
	if len(apiKeys) == 0 {
		apiKeys = secrets.List(secretDefault("ncbi-api-keys", ""))
	}

	return types.PipelineConfig{
		Entrez: types.EntrezConfig{
			HTTPConfig: httpCfg,
			Email:      secretDefault("entrez-email", viper.GetString("entrez.email")),
			APIKeys:    apiKeys,
			MaxRetries: viper.GetInt("entrez.max_retries"),
		},
		WebSearch: types.WebSearchConfig{
			HTTPConfig: httpCfg,
			APIKey:     secretDefault("google-search-api-key", viper.GetString("web_search.api_key")),
			CSEID:      secretDefault("google-search-cse-id", viper.GetString("web_search.cse_id")),
			MaxResults: viper.GetInt("web_search.max_results"),
		},
		Summarize: types.SummarizeConfig{
			Model:   viper.GetString("summarize.model"),
			APIKey:  secretDefault("anthropic-api-key", viper.GetString("summarize.api_key")),
			Enabled: true,
		},
		Resolve: types.ResolveConfig{
			StepBudget:       viper.GetInt("resolve.step_budget"),
			WebSearchResults: viper.GetInt("resolve.web_search_results"),
		},
		Batch: types.BatchConfig{
			MaxConcurrency: viper.GetInt("batch.max_concurrency"),
			OutputPath:     viper.GetString("batch.output_path"),
			StorePath:      viper.GetString("batch.store_path"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
