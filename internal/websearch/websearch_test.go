// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

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

	oldBase := searchAPIBase
	searchAPIBase = srv.URL
	t.Cleanup(func() { searchAPIBase = oldBase })

	return NewClient(types.WebSearchConfig{APIKey: "test-key", CSEID: "test-cse"})
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cse", q.Get("cx"))
		assert.Equal(t, `"SRP270870"`, q.Get("q"))
		assert.Equal(t, "4", q.Get("num"))
		fmt.Fprint(w, `{
			"searchInformation": {"totalResults": "2"},
			"items": [
				{
					"title": "A single-cell atlas of the mouse gut - PubMed",
					"link": "https://pubmed.ncbi.nlm.nih.gov/36602862/",
					"snippet": "Data are available under SRP270870.",
					"pagemap": {"metatags": [{
						"citation_title": "A single-cell atlas of the mouse gut",
						"citation_author": "Smith J",
						"citation_journal_title": "Nature Communications",
						"viewport": "width=device-width"
					}]}
				},
				{
					"title": "SRP270870 - SRA",
					"link": "https://www.ncbi.nlm.nih.gov/sra/?term=SRP270870",
					"snippet": "Sequence Read Archive entry."
				}
			]
		}`)
	})

	results, err := client.Search(context.Background(), `"SRP270870"`, 4)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "A single-cell atlas of the mouse gut - PubMed", results[0].Title)
	assert.Equal(t, "Smith J", results[0].Meta["citation_author"])
	assert.NotContains(t, results[0].Meta, "viewport", "only citation metatags are kept")
	assert.Nil(t, results[1].Meta)
}

func TestSearchNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"searchInformation": {"totalResults": "0"}}`)
	})

	results, err := client.Search(context.Background(), `"SRP999999"`, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchWithoutCredentialsReturnsMock(t *testing.T) {
	client := NewClient(types.WebSearchConfig{})
	assert.False(t, client.Enabled())

	results, err := client.Search(context.Background(), `"GSE287827"`, 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, "mock search")
	assert.Contains(t, results[0].Snippet, "GSE287827")
}

func TestSearchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Search(context.Background(), "query", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
}

func TestFormat(t *testing.T) {
	results := []Result{
		{
			Title:   "Paper title",
			Link:    "https://example.com",
			Snippet: "snippet text",
			Meta:    map[string]string{"citation_author": "Smith J"},
		},
	}
	out := Format(results)
	assert.Contains(t, out, "Result 1:")
	assert.Contains(t, out, "Title: Paper title")
	assert.Contains(t, out, "citation_author: Smith J")

	assert.Equal(t, "No results found.", Format(nil))
}
