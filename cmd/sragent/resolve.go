// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maarten-devries/SRAgent/internal/biostudies"
	"github.com/maarten-devries/SRAgent/internal/entrez"
	"github.com/maarten-devries/SRAgent/internal/geo"
	"github.com/maarten-devries/SRAgent/internal/preprint"
	"github.com/maarten-devries/SRAgent/internal/resolve"
	"github.com/maarten-devries/SRAgent/internal/summarize"
	"github.com/maarten-devries/SRAgent/internal/websearch"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [text with accessions]",
	Short: "Resolve study accessions to their publication",
	Long: `Resolve scans the given text for accessions (SRP..., PRJNA..., GSE...,
E-MTAB-..., and related forms), treats them as naming a single study, and
reports the associated publication: PMID and PMCID, or a preprint DOI when
no journal publication exists yet.

Input containing newlines is treated as one study per line; studies are
resolved concurrently up to --max-concurrency and reported in input order.

A study with no publication is a normal outcome, not an error; the command
exits non-zero only for usage or configuration problems.`,
	Example: `  sragent resolve SRP270870 PRJNA644744
  sragent resolve "Find the publication for GSE159812" --json
  sragent resolve "$(cat studies.txt)" --max-concurrency 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	var studies [][]types.Accession
	for _, line := range strings.Split(strings.Join(args, " "), "\n") {
		if accs := types.ExtractAccessions(line); len(accs) > 0 {
			studies = append(studies, accs)
		}
	}
	if len(studies) == 0 {
		return fmt.Errorf("no accessions recognized in input")
	}

	cfg := pipelineConfig()
	if budget, _ := cmd.Flags().GetInt("step-budget"); budget > 0 {
		cfg.Resolve.StepBudget = budget
	}
	if noSummaries, _ := cmd.Flags().GetBool("no-summaries"); noSummaries {
		cfg.Summarize.Enabled = false
	}
	concurrency, _ := cmd.Flags().GetInt("max-concurrency")
	if concurrency <= 0 {
		concurrency = 3
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx := context.Background()
	if len(studies) == 1 {
		resolver := newResolver(cfg, os.Stderr)
		return printResult(os.Stdout, resolver.Resolve(ctx, studies[0]), jsonOutput)
	}

	resolver := newConcurrentResolver(cfg)
	results := make([]types.Result, len(studies))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, accs := range studies {
		wg.Add(1)
		go func(i int, accs []types.Accession) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = resolver.Resolve(ctx, accs)
		}(i, accs)
	}
	wg.Wait()

	for i, res := range results {
		if !jsonOutput && i > 0 {
			fmt.Println()
		}
		if !jsonOutput {
			fmt.Printf("Study:        %s\n", accessionIDs(studies[i]))
		}
		if err := printResult(os.Stdout, res, jsonOutput); err != nil {
			return err
		}
	}
	return nil
}

func accessionIDs(accs []types.Accession) string {
	ids := make([]string, len(accs))
	for i, a := range accs {
		ids[i] = a.ID
	}
	return strings.Join(ids, " ")
}

// newResolver assembles the full toolset and a resolver over it. A Resolver
// handles one resolution at a time; concurrent callers build one each over
// the same shared toolset.
func newResolver(cfg types.PipelineConfig, progress io.Writer) *resolve.Resolver {
	tools := newToolset(cfg)
	r := resolve.New(tools, cfg.Resolve)
	r.Progress = progress
	if cfg.Summarize.Enabled && cfg.Summarize.APIKey != "" {
		r.Summarizer = &summarize.ClaudeSummarizer{
			APIKey: cfg.Summarize.APIKey,
			Model:  cfg.Summarize.Model,
		}
	}
	return r
}

func newToolset(cfg types.PipelineConfig) *resolve.Clients {
	return &resolve.Clients{
		Entrez:     entrez.NewClient(cfg.Entrez),
		BioStudies: biostudies.NewClient(cfg.Entrez.HTTPConfig),
		GEO:        geo.NewClient(cfg.Entrez.HTTPConfig),
		Search:     websearch.NewClient(cfg.WebSearch),
		Preprint:   preprint.NewClient(cfg.Entrez.HTTPConfig),
	}
}

func printResult(w io.Writer, res types.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "Source:       %s\n", res.Source)
	fmt.Fprintf(w, "PMID:         %s\n", valueOrNone(res.PMID))
	fmt.Fprintf(w, "PMCID:        %s\n", valueOrNone(res.PMCID))
	fmt.Fprintf(w, "Preprint DOI: %s\n", valueOrNone(res.PreprintDOI))
	if res.Title != "" {
		fmt.Fprintf(w, "Title:        %s\n", res.Title)
	}
	if res.MultiplePublications {
		fmt.Fprintf(w, "Multiple publications reported; primary shown above.\n")
		for _, pub := range res.AllPublications {
			fmt.Fprintf(w, "  - PMID %s PMCID %s %s\n",
				valueOrNone(pub.PMID), valueOrNone(pub.PMCID), pub.Title)
		}
	}
	if res.Message != "" {
		fmt.Fprintf(w, "Notes:        %s\n", res.Message)
	}
	return nil
}

func valueOrNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func init() {
	resolveCmd.Flags().Int("step-budget", 0, "maximum tool invocations per resolution (0 = default)")
	resolveCmd.Flags().Int("max-concurrency", 3, "parallel resolutions for multi-line input")
	resolveCmd.Flags().Bool("no-summaries", false, "disable step summaries")
	resolveCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(resolveCmd)
}
