// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAccession(t *testing.T) {
	tests := []struct {
		in   string
		kind AccessionKind
		db   string
	}{
		{"SRP270870", KindSRAStudy, "sra"},
		{"ERP151533", KindSRAStudy, "sra"},
		{"DRP000001", KindSRAStudy, "sra"},
		{"SRX123456", KindSRAExperiment, "sra"},
		{"SRR123456", KindSRARun, "sra"},
		{"PRJNA644744", KindBioProject, "bioproject"},
		{"PRJEB66480", KindBioProject, "bioproject"},
		{"PRJDB12345", KindBioProject, "bioproject"},
		{"GSE287827", KindGEOSeries, "gds"},
		{"GSM1234567", KindGEOSample, "gds"},
		{"GPL24676", KindGEOPlatform, "gds"},
		{"E-MTAB-13382", KindArrayExpress, ""},
		{"  srp270870 ", KindSRAStudy, "sra"}, // trimmed and upper-cased
		{"SRP", KindUnknown, ""},
		{"PRJXX123", KindUnknown, ""},
		{"not an accession", KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			acc := ClassifyAccession(tt.in)
			assert.Equal(t, tt.kind, acc.Kind)
			assert.Equal(t, tt.db, acc.Kind.EntrezDB())
		})
	}
}

func TestExtractAccessions(t *testing.T) {
	text := "Find publications for SRP270870 and PRJNA644744. " +
		"These accessions (SRP270870 again, plus E-MTAB-13382) name one study."

	accs := ExtractAccessions(text)

	ids := make([]string, len(accs))
	for i, a := range accs {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"SRP270870", "PRJNA644744", "E-MTAB-13382"}, ids)
}

func TestExtractAccessionsNone(t *testing.T) {
	assert.Empty(t, ExtractAccessions("no identifiers here"))
}

func TestPublicationPredicates(t *testing.T) {
	assert.True(t, Publication{}.IsEmpty())
	assert.False(t, Publication{PMID: "1"}.IsEmpty())
	assert.False(t, Publication{PMID: "1"}.Complete())
	assert.True(t, Publication{PMID: "1", PMCID: "PMC2"}.Complete())
}

func TestPublicationDateSerialization(t *testing.T) {
	// The date key is present whether or not the date is known; consumers
	// treat the zero time as unknown.
	zero, err := json.Marshal(Publication{PMID: "1"})
	require.NoError(t, err)
	assert.Contains(t, string(zero), `"date":"0001-01-01T00:00:00Z"`)

	set, err := json.Marshal(Publication{PMID: "1", Date: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, string(set), `"date":"2023-03-15T00:00:00Z"`)
}
