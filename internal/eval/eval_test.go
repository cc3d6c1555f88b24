// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarten-devries/SRAgent/pkg/types"
)

// scriptedResolver returns a canned result per first-accession ID.
type scriptedResolver struct {
	mu      sync.Mutex
	results map[string]types.Result
	calls   []string
}

func (r *scriptedResolver) Resolve(_ context.Context, accs []types.Accession) types.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(accs) == 0 {
		return types.NotFound("no accessions")
	}
	r.calls = append(r.calls, accs[0].ID)
	if res, ok := r.results[accs[0].ID]; ok {
		return res
	}
	return types.NotFound("not scripted")
}

func TestRunScoresCases(t *testing.T) {
	resolver := &scriptedResolver{results: map[string]types.Result{
		"SRP270870": {
			Publication: types.Publication{PMID: "36602862", PMCID: "PMC10014110"},
			Source:      "google_search",
		},
		"SRP559437": {
			Publication: types.Publication{PreprintDOI: "10.1101/2025.02.26.640382v2"},
			Source:      "google_search",
		},
		"SRP557106": types.NotFound("no publication found"),
		"ERP151533": {
			Publication: types.Publication{PMID: "38237587"},
			Source:      "direct_link",
		},
	}}

	cases := []Case{
		mustCase(t, "SRP270870_PRJNA644744"),
		mustCase(t, "SRP559437_PRJNA1214776_GSE287827"),
		mustCase(t, "SRP557106_PRJNA1210001"),
		mustCase(t, "ERP151533_PRJEB66480_E-MTAB-13382"),
	}

	runner := &Runner{Resolver: resolver, Concurrency: 2}
	report := runner.Run(context.Background(), cases)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 4, report.Passed)
	assert.Equal(t, 0, report.Failed)

	// Outcomes keep case order regardless of goroutine completion order.
	require.Len(t, report.Outcomes, 4)
	for i, c := range cases {
		assert.Equal(t, c.Name, report.Outcomes[i].Case.Name)
		assert.True(t, report.Outcomes[i].Success)
	}
}

func TestRunVersionedDOIStillPasses(t *testing.T) {
	resolver := &scriptedResolver{results: map[string]types.Result{
		"SRP559437": {
			Publication: types.Publication{PreprintDOI: "10.1101/2025.02.26.640382v1"},
		},
	}}

	runner := &Runner{Resolver: resolver}
	report := runner.Run(context.Background(), []Case{mustCase(t, "SRP559437_PRJNA1214776_GSE287827")})

	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].PreprintDOICorrect)
	assert.True(t, report.Outcomes[0].Success)
}

func TestRunNullCaseFailsOnSpuriousFind(t *testing.T) {
	resolver := &scriptedResolver{results: map[string]types.Result{
		"SRP557106": {Publication: types.Publication{PMID: "12345678"}},
	}}

	runner := &Runner{Resolver: resolver}
	report := runner.Run(context.Background(), []Case{mustCase(t, "SRP557106_PRJNA1210001")})

	require.Len(t, report.Outcomes, 1)
	assert.False(t, report.Outcomes[0].PMIDCorrect)
	assert.False(t, report.Outcomes[0].Success)
	assert.Equal(t, 1, report.Failed)
}

func TestRunPartialScore(t *testing.T) {
	// Right PMID, missing PMCID: the case expects both, so it fails.
	resolver := &scriptedResolver{results: map[string]types.Result{
		"SRP270870": {Publication: types.Publication{PMID: "36602862"}},
	}}

	runner := &Runner{Resolver: resolver}
	report := runner.Run(context.Background(), []Case{mustCase(t, "SRP270870_PRJNA644744")})

	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].PMIDCorrect)
	assert.False(t, report.Outcomes[0].PMCIDCorrect)
	assert.False(t, report.Outcomes[0].Success)
}

func TestRunWritesJSONL(t *testing.T) {
	resolver := &scriptedResolver{results: map[string]types.Result{
		"SRP270870": {Publication: types.Publication{PMID: "36602862", PMCID: "PMC10014110"}},
	}}

	var sink bytes.Buffer
	runner := &Runner{Resolver: resolver, Results: &sink}
	runner.Run(context.Background(), []Case{
		mustCase(t, "SRP270870_PRJNA644744"),
		mustCase(t, "SRP557106_PRJNA1210001"),
	})

	var lines []Outcome
	scanner := bufio.NewScanner(&sink)
	for scanner.Scan() {
		var out Outcome
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &out))
		lines = append(lines, out)
	}
	require.Len(t, lines, 2)

	names := []string{lines[0].Case.Name, lines[1].Case.Name}
	assert.Contains(t, names, "SRP270870_PRJNA644744")
	assert.Contains(t, names, "SRP557106_PRJNA1210001")
}

func TestCaseNamed(t *testing.T) {
	c, ok := CaseNamed("SRP270870_PRJNA644744")
	require.True(t, ok)
	assert.Equal(t, "36602862", c.ExpectedPMID)

	_, ok = CaseNamed("nope")
	assert.False(t, ok)

	assert.Len(t, CaseNames(), len(DefaultCases))
}

func mustCase(t *testing.T, name string) Case {
	t.Helper()
	c, ok := CaseNamed(name)
	require.True(t, ok)
	return c
}
