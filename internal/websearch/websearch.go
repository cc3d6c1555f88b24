// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch wraps the Google Custom Search JSON API for finding
// publications by accession number or study title. When credentials are
// absent the client degrades to a placeholder response so that resolution
// can proceed on the remaining strategy steps.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/maarten-devries/SRAgent/internal/httputil"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// searchAPIBase is the Custom Search endpoint. Declared as a var so tests
// can substitute an httptest server.
var searchAPIBase = "https://www.googleapis.com/customsearch/v1"

// metatagKeep lists the citation metatags worth keeping from a result's
// pagemap; everything else is noise for publication matching.
var metatagKeep = []string{
	"citation_publication_date",
	"citation_title",
	"citation_author_institution",
	"og:site_name",
	"citation_publisher",
	"citation_journal_title",
	"og:description",
	"citation_journal_abbrev",
	"og:title",
	"citation_author",
	"title",
}

// Result is one shortened web search hit.
type Result struct {
	Title   string            `json:"title"`
	Link    string            `json:"link"`
	Snippet string            `json:"snippet"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Client queries the Custom Search API.
type Client struct {
	HTTP       *http.Client
	APIKey     string
	CSEID      string
	UserAgent  string
	MaxRetries int
}

// NewClient builds a Client from config. Empty credentials are allowed; the
// client then serves mock responses.
func NewClient(cfg types.WebSearchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		APIKey:    cfg.APIKey,
		CSEID:     cfg.CSEID,
		UserAgent: cfg.UserAgent,
	}
}

// Enabled reports whether real search credentials are configured.
func (c *Client) Enabled() bool {
	return c.APIKey != "" && c.CSEID != ""
}

type searchResponse struct {
	SearchInformation struct {
		TotalResults string `json:"totalResults"`
	} `json:"searchInformation"`
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		PageMap struct {
			MetaTags []map[string]string `json:"metatags"`
		} `json:"pagemap"`
	} `json:"items"`
}

// Search runs a web search and returns up to n shortened results. Accession
// queries should be quoted by the caller for exact matching. Without
// credentials it returns a single placeholder result identifying itself as
// a mock.
func (c *Client) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if !c.Enabled() {
		return []Result{{
			Title:   "Mock search result",
			Snippet: fmt.Sprintf("Google Search API key or CSE ID not configured; this is a mock search for: %s", query),
		}}, nil
	}

	if n <= 0 {
		n = 4
	}
	params := url.Values{
		"key": {c.APIKey},
		"cx":  {c.CSEID},
		"q":   {query},
		"num": {fmt.Sprintf("%d", n)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing web search response: %w", err)
	}
	if sr.SearchInformation.TotalResults == "0" {
		return nil, nil
	}

	results := make([]Result, 0, len(sr.Items))
	for _, item := range sr.Items {
		r := Result{Title: item.Title, Link: item.Link, Snippet: item.Snippet}
		if len(item.PageMap.MetaTags) > 0 {
			tags := item.PageMap.MetaTags[0]
			for _, k := range metatagKeep {
				if v, ok := tags[k]; ok && v != "" {
					if r.Meta == nil {
						r.Meta = make(map[string]string)
					}
					r.Meta[k] = v
				}
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Format renders results as the readable block handed to the step log.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	out := "Search results:\n"
	for i, r := range results {
		out += fmt.Sprintf("\nResult %d:\nTitle: %s\nLink: %s\nSnippet: %s\n", i+1, r.Title, r.Link, r.Snippet)
		for _, k := range []string{"citation_publication_date", "citation_author", "citation_author_institution", "citation_journal_title"} {
			if v, ok := r.Meta[k]; ok {
				out += fmt.Sprintf("%s: %s\n", k, v)
			}
		}
	}
	return out
}
