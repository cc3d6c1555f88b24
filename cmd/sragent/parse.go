// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/maarten-devries/SRAgent/internal/entrez"
	"github.com/maarten-devries/SRAgent/internal/extract"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a model response into a structured result",
	Long: `Parse reads a publication-finding response (structured JSON or free text),
extracts PMID, PMCID, preprint DOI, and discovery source, canonicalizes the
identifiers, and backfills a missing PMID from the PMCID via PubMed.

Reads from the named file, or stdin when no file (or "-") is given. Useful
for normalizing responses produced outside sragent.`,
	Example: `  sragent parse response.txt
  echo 'PMID: 36602862, PMCID: PMC10014110' | sragent parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cfg := pipelineConfig()
	res := extract.FromResponse(string(text))
	if noLookup, _ := cmd.Flags().GetBool("no-lookup"); noLookup {
		res = extract.Normalize(context.Background(), res, nil, os.Stderr)
	} else {
		res = extract.Normalize(context.Background(), res, entrez.NewClient(cfg.Entrez), os.Stderr)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return printResult(os.Stdout, res, jsonOutput)
}

func init() {
	parseCmd.Flags().Bool("no-lookup", false, "skip the PubMed cross-lookup for missing identifiers")
	parseCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(parseCmd)
}
