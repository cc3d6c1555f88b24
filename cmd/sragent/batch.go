// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maarten-devries/SRAgent/internal/store"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <csv-file>",
	Short: "Resolve publications for a CSV of studies",
	Long: `Batch reads studies from a CSV file with columns database, entrez_id, and
accessions (the accession list separated by spaces or semicolons), resolves
each study's publication, and appends one JSON line per completed study to
the output file. Studies already recorded in the processed-accession store
are skipped, so interrupted runs resume where they left off.`,
	Example: `  sragent batch studies.csv --output results.jsonl
  sragent batch studies.csv --store processed.db --max-concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchRow is one study read from the input CSV.
type batchRow struct {
	Database   string   `json:"database"`
	EntrezID   string   `json:"entrez_id"`
	Accessions []string `json:"accessions"`
}

// batchOutcome is the JSONL record written per completed study.
type batchOutcome struct {
	batchRow
	Result types.Result `json:"result"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if noSummaries, _ := cmd.Flags().GetBool("no-summaries"); noSummaries {
		cfg.Summarize.Enabled = false
	}
	if v, _ := cmd.Flags().GetInt("max-concurrency"); v > 0 {
		cfg.Batch.MaxConcurrency = v
	}
	if cfg.Batch.MaxConcurrency <= 0 {
		cfg.Batch.MaxConcurrency = 3
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Batch.OutputPath = v
	}
	if cfg.Batch.OutputPath == "" {
		cfg.Batch.OutputPath = "results.jsonl"
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Batch.StorePath = v
	}
	if cfg.Batch.StorePath == "" {
		cfg.Batch.StorePath = "processed.db"
	}

	rows, err := readBatchCSV(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No studies in input file.")
		return nil
	}

	db, err := store.Open(cfg.Batch.StorePath)
	if err != nil {
		return err
	}
	defer db.Close()

	out, err := os.OpenFile(cfg.Batch.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer out.Close()

	ctx := context.Background()
	resolver := newConcurrentResolver(cfg)

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.Batch.MaxConcurrency)
	var resolved, skipped, failed int

	for _, row := range rows {
		wg.Add(1)
		go func(row batchRow) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			done, err := db.IsProcessed(ctx, row.Database, row.EntrezID)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				fmt.Fprintf(os.Stderr, "%s/%s: store check failed: %v\n", row.Database, row.EntrezID, err)
				return
			}
			if done {
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}

			accessions := make([]types.Accession, 0, len(row.Accessions))
			for _, id := range row.Accessions {
				if acc := types.ClassifyAccession(id); acc.Kind != types.KindUnknown {
					accessions = append(accessions, acc)
				}
			}
			var res types.Result
			if len(accessions) == 0 {
				res = types.NotFound("no recognizable accessions in row")
			} else {
				res = resolver.Resolve(ctx, accessions)
			}

			primary := row.EntrezID
			if len(accessions) > 0 {
				primary = accessions[0].ID
			}

			mu.Lock()
			defer mu.Unlock()
			if line, err := json.Marshal(batchOutcome{batchRow: row, Result: res}); err == nil {
				fmt.Fprintf(out, "%s\n", line)
			}
			if err := db.MarkProcessed(ctx, row.Database, row.EntrezID, primary, res); err != nil {
				fmt.Fprintf(os.Stderr, "%s/%s: recording outcome failed: %v\n", row.Database, row.EntrezID, err)
			}
			resolved++
		}(row)
	}
	wg.Wait()

	fmt.Fprintf(os.Stderr, "Batch complete: %d resolved, %d skipped, %d failed (output: %s)\n",
		resolved, skipped, failed, cfg.Batch.OutputPath)
	return nil
}

// readBatchCSV parses the input file. The header row names the columns;
// database, entrez_id, and accessions are required.
func readBatchCSV(path string) ([]batchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()
	return parseBatchCSV(f)
}

func parseBatchCSV(r io.Reader) ([]batchRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"database", "entrez_id", "accessions"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV missing required column %q", required)
		}
	}

	var rows []batchRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		row := batchRow{
			Database: strings.TrimSpace(record[col["database"]]),
			EntrezID: strings.TrimSpace(record[col["entrez_id"]]),
		}
		for _, id := range strings.FieldsFunc(record[col["accessions"]], func(r rune) bool {
			return r == ' ' || r == ';'
		}) {
			row.Accessions = append(row.Accessions, strings.TrimSpace(id))
		}
		if row.Database == "" || row.EntrezID == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func init() {
	batchCmd.Flags().Int("max-concurrency", 0, "parallel resolutions (0 = config default)")
	batchCmd.Flags().String("output", "", "JSONL output path (default results.jsonl)")
	batchCmd.Flags().String("store", "", "processed-accession database path (default processed.db)")
	batchCmd.Flags().Bool("no-summaries", false, "disable step summaries")

	rootCmd.AddCommand(batchCmd)
}
