// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sragent/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds settings for the NCBI E-utilities client.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent with every E-utilities request, as NCBI requests.
	Email string `json:"email" yaml:"email"`

	// APIKeys is the credential pool for E-utilities requests. Keys are
	// rotated round-robin per call to spread rate-limit load.
	APIKeys []string `json:"api_keys,omitempty" yaml:"api_keys,omitempty"`

	// MaxRetries bounds retry attempts on rate-limit responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// WebSearchConfig holds settings for the web search wrapper.
type WebSearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Google Custom Search API key. When empty the client
	// degrades to a placeholder response instead of failing.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CSEID is the Custom Search Engine identifier.
	CSEID string `json:"cse_id,omitempty" yaml:"cse_id,omitempty"`

	// MaxResults is the number of results requested per query (default 4).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// SummarizeConfig holds settings for LLM step summarization.
type SummarizeConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Enabled controls whether step summaries are produced at all.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// ResolveConfig holds settings for one resolution run.
type ResolveConfig struct {
	// StepBudget bounds how many tool invocations a single resolution may
	// make before returning its best-known partial result (default 40).
	StepBudget int `json:"step_budget" yaml:"step_budget"`

	// WebSearchResults is the result count requested per web search query.
	WebSearchResults int `json:"web_search_results" yaml:"web_search_results"`
}

// BatchConfig holds settings for batch resolution and evaluation runs.
type BatchConfig struct {
	// MaxConcurrency bounds how many resolutions run at once (default 3).
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`

	// OutputPath is the JSONL file to which completed rows are appended
	// incrementally, so a crash mid-batch keeps finished work.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// StorePath is the SQLite database recording processed accessions.
	StorePath string `json:"store_path" yaml:"store_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Entrez    EntrezConfig    `json:"entrez" yaml:"entrez"`
	WebSearch WebSearchConfig `json:"web_search" yaml:"web_search"`
	Summarize SummarizeConfig `json:"summarize" yaml:"summarize"`
	Resolve   ResolveConfig   `json:"resolve" yaml:"resolve"`
	Batch     BatchConfig     `json:"batch" yaml:"batch"`
}
