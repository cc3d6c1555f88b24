// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maarten-devries/SRAgent/internal/eval"
	"github.com/maarten-devries/SRAgent/internal/resolve"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

var evalCmd = &cobra.Command{
	Use:   "eval [case-name]",
	Short: "Run the labeled regression suite",
	Long: `Eval resolves each labeled case (known accession sets with their expected
publication) and scores the outcomes. With no argument every case runs;
pass a case name to run just one.

The command exits non-zero when any case fails, so it can gate releases.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	cases := eval.DefaultCases
	if len(args) == 1 {
		c, ok := eval.CaseNamed(args[0])
		if !ok {
			return fmt.Errorf("case %q not found; available cases:\n  %s",
				args[0], strings.Join(eval.CaseNames(), "\n  "))
		}
		cases = []eval.Case{c}
	}

	cfg := pipelineConfig()
	if noSummaries, _ := cmd.Flags().GetBool("no-summaries"); noSummaries {
		cfg.Summarize.Enabled = false
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Batch.MaxConcurrency
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	runner := &eval.Runner{
		Resolver:    newConcurrentResolver(cfg),
		Concurrency: concurrency,
		Log:         os.Stderr,
	}

	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening output file: %w", err)
		}
		defer f.Close()
		runner.Results = f
	}

	report := runner.Run(context.Background(), cases)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, out := range report.Outcomes {
			status := "PASS"
			if !out.Success {
				status = "FAIL"
			}
			fmt.Printf("%-4s  %-40s  pmid=%s pmcid=%s preprint=%s (%.1fs)\n",
				status, out.Case.Name,
				valueOrNone(out.Result.PMID), valueOrNone(out.Result.PMCID),
				valueOrNone(out.Result.PreprintDOI), out.ElapsedSeconds)
		}
		fmt.Printf("\n%d/%d cases passed\n", report.Passed, report.Total)
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d case(s) failed", report.Failed)
	}
	return nil
}

// concurrentResolver builds one resolver per goroutine over a shared
// toolset, since a single Resolver handles one resolution at a time.
type concurrentResolver struct {
	cfg   types.PipelineConfig
	tools *resolve.Clients

	mu   sync.Mutex
	pool []*resolve.Resolver
}

func newConcurrentResolver(cfg types.PipelineConfig) *concurrentResolver {
	return &concurrentResolver{cfg: cfg, tools: newToolset(cfg)}
}

func (c *concurrentResolver) Resolve(ctx context.Context, accessions []types.Accession) types.Result {
	r := c.take()
	defer c.put(r)
	return r.Resolve(ctx, accessions)
}

func (c *concurrentResolver) take() *resolve.Resolver {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.pool); n > 0 {
		r := c.pool[n-1]
		c.pool = c.pool[:n-1]
		return r
	}
	r := resolve.New(c.tools, c.cfg.Resolve)
	r.Progress = os.Stderr
	return r
}

func (c *concurrentResolver) put(r *resolve.Resolver) {
	c.mu.Lock()
	c.pool = append(c.pool, r)
	c.mu.Unlock()
}

func init() {
	evalCmd.Flags().Int("concurrency", 0, "parallel cases (0 = batch.max_concurrency)")
	evalCmd.Flags().String("output", "", "append per-case outcomes to a JSONL file")
	evalCmd.Flags().Bool("no-summaries", false, "disable step summaries")
	evalCmd.Flags().Bool("json", false, "output the full report as JSON")

	rootCmd.AddCommand(evalCmd)
}
