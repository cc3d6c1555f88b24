// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entrez is a thin client for the NCBI Entrez E-utilities
// (esearch, esummary, elink), covering the lookups the resolver needs:
// accession to UID, UID to linked PubMed records, PMID/PMCID
// cross-links, study summaries, and title search.
package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maarten-devries/SRAgent/internal/httputil"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// eutilsBase is the E-utilities endpoint root. Declared as a var so tests
// can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Client issues Entrez E-utilities requests with a shared credential pool.
// Keys are rotated round-robin per call to spread rate-limit load.
type Client struct {
	HTTP       *http.Client
	Email      string
	Keys       *httputil.KeyPool
	MaxRetries int
	UserAgent  string
	Log        io.Writer
}

// NewClient builds a Client from config. A nil key list is allowed; requests
// then go out without an api_key parameter.
func NewClient(cfg types.EntrezConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		Email:      cfg.Email,
		Keys:       httputil.NewKeyPool(cfg.APIKeys),
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Log:        io.Discard,
	}
}

func (c *Client) logf(format string, args ...any) {
	if c.Log != nil {
		fmt.Fprintf(c.Log, format+"\n", args...)
	}
}

// get issues one E-utilities request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("retmode", "json")
	if c.Email != "" {
		params.Set("email", c.Email)
	}
	if key := c.Keys.Next(); key != "" {
		params.Set("api_key", key)
	}

	reqURL := eutilsBase + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("entrez %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("entrez %s returned HTTP %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing entrez %s response: %w", endpoint, err)
	}
	return nil
}

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type elinkResponse struct {
	LinkSets []struct {
		LinkSetDBs []struct {
			DBTo     string   `json:"dbto"`
			LinkName string   `json:"linkname"`
			Links    []string `json:"links"`
		} `json:"linksetdbs"`
	} `json:"linksets"`
}

// esummaryResponse keys docsums by UID under "result", alongside a "uids"
// entry listing them; the docsum shape varies per database, so entries stay
// raw until the caller knows which fields to pull.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

func (r *esummaryResponse) uids() []string {
	raw, ok := r.Result["uids"]
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

// docsum returns the raw document summary for uid, or nil when absent.
func (r *esummaryResponse) docsum(uid string) json.RawMessage {
	return r.Result[uid]
}

// esearch returns the UIDs matching term in db.
func (c *Client) esearch(ctx context.Context, db, term string, retmax int) ([]string, error) {
	params := url.Values{
		"db":     {db},
		"term":   {term},
		"retmax": {fmt.Sprintf("%d", retmax)},
	}
	var sr esearchResponse
	if err := c.get(ctx, "esearch.fcgi", params, &sr); err != nil {
		return nil, err
	}
	return sr.Result.IDList, nil
}

// esummary fetches the raw document summary for a single UID.
func (c *Client) esummary(ctx context.Context, db, uid string) (json.RawMessage, error) {
	params := url.Values{
		"db": {db},
		"id": {uid},
	}
	var sr esummaryResponse
	if err := c.get(ctx, "esummary.fcgi", params, &sr); err != nil {
		return nil, err
	}
	doc := sr.docsum(uid)
	if doc == nil {
		// Some databases key the docsum by a canonicalized UID.
		if ids := sr.uids(); len(ids) > 0 {
			doc = sr.docsum(ids[0])
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("no summary for %s UID %s", db, uid)
	}
	return doc, nil
}

// elink returns the target-database IDs linked from id, following only
// linksets pointing at toDB.
func (c *Client) elink(ctx context.Context, fromDB, toDB, id string) ([]string, error) {
	params := url.Values{
		"dbfrom": {fromDB},
		"db":     {toDB},
		"id":     {id},
	}
	var lr elinkResponse
	if err := c.get(ctx, "elink.fcgi", params, &lr); err != nil {
		return nil, err
	}

	var out []string
	seen := make(map[string]bool)
	for _, ls := range lr.LinkSets {
		for _, db := range ls.LinkSetDBs {
			if db.DBTo != toDB {
				continue
			}
			for _, link := range db.Links {
				if !seen[link] {
					seen[link] = true
					out = append(out, link)
				}
			}
		}
	}
	return out, nil
}
