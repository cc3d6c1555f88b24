// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preprint checks whether a preprint has since been published,
// using the bioRxiv details API, which serves both bioRxiv and medRxiv.
package preprint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maarten-devries/SRAgent/internal/httputil"
	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// detailsAPIBase is the preprint details endpoint. Declared as a var so
// tests can substitute an httptest server.
var detailsAPIBase = "https://api.biorxiv.org/details"

// servers are the preprint servers checked, in order.
var servers = []string{"biorxiv", "medrxiv"}

// Client queries preprint publication status.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int
}

// NewClient builds a Client with the given HTTP settings.
func NewClient(cfg types.HTTPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
	}
}

type detailsResponse struct {
	Collection []struct {
		Published string `json:"published"`
	} `json:"collection"`
}

// PublishedDOI returns the peer-reviewed DOI for a preprint DOI, checking
// bioRxiv then medRxiv. The API reports "NA" for unpublished preprints;
// that and an unknown DOI both yield an empty result, not an error. A
// failure against one server falls through to the next.
func (c *Client) PublishedDOI(ctx context.Context, doi string) (string, error) {
	doi = ident.NormalizeDOI(doi)
	if doi == "" {
		return "", nil
	}

	var lastErr error
	for _, server := range servers {
		published, err := c.query(ctx, server, doi)
		if err != nil {
			lastErr = err
			continue
		}
		if published != "" {
			return published, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", nil
}

func (c *Client) query(ctx context.Context, server, doi string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsAPIBase+"/"+server+"/"+doi, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("%s details request: %w", server, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s details returned HTTP %d", server, resp.StatusCode)
	}

	var dr detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return "", fmt.Errorf("parsing %s details response: %w", server, err)
	}

	for _, entry := range dr.Collection {
		if entry.Published != "" && entry.Published != "NA" {
			return entry.Published, nil
		}
	}
	return "", nil
}
