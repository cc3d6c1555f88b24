// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biostudies

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarten-devries/SRAgent/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldBase := biostudiesAPIBase
	biostudiesAPIBase = srv.URL
	t.Cleanup(func() { biostudiesAPIBase = oldBase })

	return NewClient(types.HTTPConfig{})
}

const sampleStudy = `{
	"accno": "E-MTAB-13382",
	"section": {
		"type": "Study",
		"attributes": [{"name": "Title", "value": "Gut atlas study"}],
		"subsections": [
			{
				"type": "Author",
				"attributes": [{"name": "Name", "value": "Jane Smith"}]
			},
			{
				"type": "Author",
				"attributes": [{"name": "Name", "value": "Tuan Nguyen"}]
			},
			{
				"type": "Publication",
				"accno": "38237587",
				"attributes": [
					{"name": "Title", "value": "A transcriptomic atlas of the human gut"},
					{"name": "Authors", "value": "Smith J, Nguyen T"},
					{"name": "DOI", "value": "https://doi.org/10.1038/s41586-023-06000-1"}
				],
				"links": [{"url": "https://doi.org/10.1038/s41586-023-06000-1"}]
			}
		]
	}
}`

func TestInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/E-MTAB-13382", r.URL.Path)
		fmt.Fprint(w, sampleStudy)
	})

	info, err := client.Info(context.Background(), "E-MTAB-13382")
	require.NoError(t, err)
	assert.Equal(t, []string{"38237587", "10.1038/s41586-023-06000-1"}, info.IDs)
	assert.Equal(t, "A transcriptomic atlas of the human gut", info.Title)
	assert.Equal(t, []string{"Jane Smith", "Tuan Nguyen", "Smith J", "Nguyen T"}, info.Authors)
}

func TestInfoSkipsNonArrayExpress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for non-ArrayExpress accession")
	})

	info, err := client.Info(context.Background(), "GSE287827")
	require.NoError(t, err)
	assert.Empty(t, info.IDs)
	assert.Empty(t, info.Authors)
	assert.Empty(t, info.Title)
}

func TestInfoTitleOnlyStudy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"section": {
				"type": "Study",
				"subsections": [
					{"type": "Title", "attributes": [{"name": "Text", "value": "Unpublished islet study"}]},
					{"type": "Author", "attributes": [{"name": "Name", "value": "Ada Lovelace"}]}
				]
			}
		}`)
	})

	info, err := client.Info(context.Background(), "E-MTAB-99999")
	require.NoError(t, err)
	assert.Empty(t, info.IDs)
	assert.Equal(t, "Unpublished islet study", info.Title)
	assert.Equal(t, []string{"Ada Lovelace"}, info.Authors)
}

func TestInfoHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Info(context.Background(), "E-MTAB-13382")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestAuthors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleStudy)
	})

	authors, err := client.Authors(context.Background(), "E-MTAB-13382")
	require.NoError(t, err)
	assert.Contains(t, authors, "Jane Smith")
	assert.Contains(t, authors, "Tuan Nguyen")
}
