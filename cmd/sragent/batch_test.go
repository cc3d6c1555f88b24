// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchCSV(t *testing.T) {
	input := `database,entrez_id,accessions
sra,12345,SRP270870 PRJNA644744
gds,200287827,GSE287827;SRP559437
sra,,SRP000000
`
	rows, err := parseBatchCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "sra", rows[0].Database)
	assert.Equal(t, "12345", rows[0].EntrezID)
	assert.Equal(t, []string{"SRP270870", "PRJNA644744"}, rows[0].Accessions)

	assert.Equal(t, []string{"GSE287827", "SRP559437"}, rows[1].Accessions)
}

func TestParseBatchCSVColumnOrder(t *testing.T) {
	input := `accessions,database,entrez_id
SRP270870,sra,12345
`
	rows, err := parseBatchCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12345", rows[0].EntrezID)
	assert.Equal(t, []string{"SRP270870"}, rows[0].Accessions)
}

func TestParseBatchCSVMissingColumn(t *testing.T) {
	input := `database,accessions
sra,SRP270870
`
	_, err := parseBatchCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entrez_id")
}
