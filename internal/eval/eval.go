// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eval runs the labeled regression suite for publication
// resolution: known accession sets with the publication each should
// resolve to.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// Case is one labeled accession set. Empty expected fields mean the
// correct answer is "no publication of that kind"; a case with all three
// expectations empty asserts the null outcome.
type Case struct {
	Name                string   `json:"name"`
	Accessions          []string `json:"accessions"`
	ExpectedPMID        string   `json:"expected_pmid,omitempty"`
	ExpectedPMCID       string   `json:"expected_pmcid,omitempty"`
	ExpectedPreprintDOI string   `json:"expected_preprint_doi,omitempty"`
	Description         string   `json:"description,omitempty"`
}

// DefaultCases is the standing regression suite.
var DefaultCases = []Case{
	{
		Name:          "SRP270870_PRJNA644744",
		Accessions:    []string{"SRP270870", "PRJNA644744"},
		ExpectedPMID:  "36602862",
		ExpectedPMCID: "PMC10014110",
		Description:   "Findable through web search but not through SRA links.",
	},
	{
		Name:                "SRP559437_PRJNA1214776_GSE287827",
		Accessions:          []string{"SRP559437", "PRJNA1214776", "GSE287827"},
		ExpectedPreprintDOI: "10.1101/2025.02.26.640382",
		Description:         "Has a bioRxiv preprint but no PubMed publication yet; found by searching the GEO title.",
	},
	{
		Name:        "SRP557106_PRJNA1210001",
		Accessions:  []string{"SRP557106", "PRJNA1210001"},
		Description: "Has no associated publication or preprint yet.",
	},
	{
		Name:          "ERP156277_PRJEB71477_E-MTAB-13085",
		Accessions:    []string{"ERP156277", "PRJEB71477", "E-MTAB-13085"},
		ExpectedPMID:  "38165934",
		ExpectedPMCID: "PMC10786309",
		Description:   "Findable through web search with the E-MTAB accession.",
	},
	{
		Name:          "GSE188367_PRJNA778547_SRP344952",
		Accessions:    []string{"GSE188367", "PRJNA778547", "SRP344952"},
		ExpectedPMID:  "35926182",
		ExpectedPMCID: "PMC9894566",
		Description:   "Findable through GEO or SRA links.",
	},
	{
		Name:          "ERP149679_PRJEB64504_E-MTAB-8142",
		Accessions:    []string{"ERP149679", "PRJEB64504", "E-MTAB-8142"},
		ExpectedPMID:  "33479125",
		ExpectedPMCID: "PMC7611557",
		Description:   "Findable through ArrayExpress or ENA links.",
	},
	{
		Name:          "ERP144781_PRJEB59723_E-MTAB-12650",
		Accessions:    []string{"ERP144781", "PRJEB59723", "E-MTAB-12650"},
		ExpectedPMID:  "36991123",
		ExpectedPMCID: "PMC10076224",
		Description:   "Findable through ArrayExpress or ENA links.",
	},
	{
		Name:         "ERP151533_PRJEB66480_E-MTAB-13382",
		Accessions:   []string{"ERP151533", "PRJEB66480", "E-MTAB-13382"},
		ExpectedPMID: "38237587",
		Description:  "Has a PMID but no PMCID; found through ArrayExpress.",
	},
	{
		Name:          "ERP123138_PRJEB39602",
		Accessions:    []string{"ERP123138", "PRJEB39602"},
		ExpectedPMID:  "32971526",
		ExpectedPMCID: "PMC7681775",
		Description:   "Findable through ENA links.",
	},
	{
		Name:          "ERP136281_PRJEB51634_E-MTAB-11536",
		Accessions:    []string{"ERP136281", "PRJEB51634", "E-MTAB-11536"},
		ExpectedPMID:  "35549406",
		ExpectedPMCID: "PMC9098087",
		Description:   "Findable through ArrayExpress links for the E-MTAB accession.",
	},
	{
		Name:          "ERP136992_PRJEB52292",
		Accessions:    []string{"ERP136992", "PRJEB52292"},
		ExpectedPMID:  "36543915",
		ExpectedPMCID: "PMC9839452",
		Description:   "Findable by searching for the title in PubMed.",
	},
	{
		Name:          "SRP288163_PRJNA670674_GSE159812",
		Accessions:    []string{"SRP288163", "PRJNA670674", "GSE159812"},
		ExpectedPMID:  "34153974",
		ExpectedPMCID: "PMC8400927",
		Description:   "The GEO page links directly to the publication.",
	},
}

// CaseNamed returns the default case with the given name, or false.
func CaseNamed(name string) (Case, bool) {
	for _, c := range DefaultCases {
		if c.Name == name {
			return c, true
		}
	}
	return Case{}, false
}

// CaseNames lists the names of the default cases in order.
func CaseNames() []string {
	names := make([]string, len(DefaultCases))
	for i, c := range DefaultCases {
		names[i] = c.Name
	}
	return names
}

// Resolver resolves an accession set to a publication.
type Resolver interface {
	Resolve(ctx context.Context, accessions []types.Accession) types.Result
}

// Outcome is the scored result of one case.
type Outcome struct {
	Case               Case         `json:"case"`
	Result             types.Result `json:"result"`
	PMIDCorrect        bool         `json:"pmid_correct"`
	PMCIDCorrect       bool         `json:"pmcid_correct"`
	PreprintDOICorrect bool         `json:"preprint_doi_correct"`
	Success            bool         `json:"success"`
	ElapsedSeconds     float64      `json:"elapsed_seconds"`
}

// Report summarizes a full run. Outcomes follow the case order of the
// input regardless of completion order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
	Total    int       `json:"total"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
}

// Runner evaluates cases against a resolver with bounded concurrency.
type Runner struct {
	Resolver    Resolver
	Concurrency int       // parallel cases; defaults to 1
	Results     io.Writer // optional JSONL sink, one Outcome per line as completed
	Log         io.Writer // progress lines; defaults to io.Discard
}

// Run resolves and scores every case. Outcomes are appended to Results
// as each case finishes, so an interrupted run keeps completed rows.
func (r *Runner) Run(ctx context.Context, cases []Case) Report {
	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	log := r.Log
	if log == nil {
		log = io.Discard
	}

	outcomes := make([]Outcome, len(cases))
	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, c := range cases {
		wg.Add(1)
		go func(i int, c Case) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fmt.Fprintf(log, "evaluating %s\n", c.Name)
			start := time.Now()
			res := r.Resolver.Resolve(ctx, parseAccessions(c.Accessions))
			out := score(c, res)
			out.ElapsedSeconds = time.Since(start).Seconds()

			mu.Lock()
			outcomes[i] = out
			if r.Results != nil {
				if line, err := json.Marshal(out); err == nil {
					fmt.Fprintf(r.Results, "%s\n", line)
				}
			}
			mu.Unlock()

			fmt.Fprintf(log, "%s: success=%v pmid=%q pmcid=%q preprint=%q\n",
				c.Name, out.Success, res.PMID, res.PMCID, res.PreprintDOI)
		}(i, c)
	}
	wg.Wait()

	report := Report{Outcomes: outcomes, Total: len(cases)}
	for _, out := range outcomes {
		if out.Success {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report
}

func parseAccessions(raw []string) []types.Accession {
	accs := make([]types.Accession, 0, len(raw))
	for _, id := range raw {
		if acc := types.ClassifyAccession(id); acc.Kind != types.KindUnknown {
			accs = append(accs, acc)
		}
	}
	return accs
}

func score(c Case, res types.Result) Outcome {
	out := Outcome{Case: c, Result: res}

	if c.ExpectedPMID == "" && c.ExpectedPMCID == "" && c.ExpectedPreprintDOI == "" {
		out.PMIDCorrect = res.PMID == ""
		out.PMCIDCorrect = res.PMCID == ""
		out.PreprintDOICorrect = res.PreprintDOI == ""
	} else {
		out.PMIDCorrect = c.ExpectedPMID == "" || res.PMID == c.ExpectedPMID
		out.PMCIDCorrect = c.ExpectedPMCID == "" || res.PMCID == c.ExpectedPMCID
		out.PreprintDOICorrect = c.ExpectedPreprintDOI == "" ||
			ident.DOIsEquivalent(res.PreprintDOI, c.ExpectedPreprintDOI)
	}
	out.Success = out.PMIDCorrect && out.PMCIDCorrect && out.PreprintDOICorrect
	return out
}
