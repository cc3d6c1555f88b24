// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geo extracts citation PMIDs from GEO accession display pages.
// The GEO web page is the most reliable place to find the publication a
// GEO dataset cites; the citation block is not exposed through E-utilities.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maarten-devries/SRAgent/internal/httputil"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// geoPageBase is the GEO accession display endpoint. Declared as a var so
// tests can substitute an httptest server.
var geoPageBase = "https://www.ncbi.nlm.nih.gov/geo/query/acc.cgi"

// Client scrapes GEO accession pages.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int
}

// NewClient builds a Client with the given HTTP settings.
func NewClient(cfg types.HTTPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
	}
}

var pubmedHrefPattern = regexp.MustCompile(`/pubmed/(\d+)`)

// PMIDFromPage fetches the GEO display page for an accession and extracts
// the cited PMID. Lookup order: the pubmed_id span's id attribute, then a
// /pubmed/ link's href, then the link text. Returns empty when the page has
// no citation. Only GSE/GSM/GDS/GPL accessions have display pages.
func (c *Client) PMIDFromPage(ctx context.Context, accession string) (string, error) {
	if !isGEOAccession(accession) {
		return "", fmt.Errorf("%s is not a GEO accession", accession)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoPageBase+"?acc="+accession, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("fetching GEO page for %s: %w", accession, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GEO page for %s returned HTTP %d", accession, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing GEO page for %s: %w", accession, err)
	}
	return extractPMID(doc), nil
}

func extractPMID(doc *goquery.Document) string {
	// The citation block tags the PMID as the id attribute of a span with
	// class pubmed_id.
	if id, ok := doc.Find("span.pubmed_id").First().Attr("id"); ok && isDigits(id) {
		return id
	}

	// Fallback: a link into PubMed, taking the PMID from the href or the
	// link text.
	pmid := ""
	doc.Find(`a[href*="/pubmed/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href, ok := sel.Attr("href"); ok {
			if m := pubmedHrefPattern.FindStringSubmatch(href); m != nil {
				pmid = m[1]
				return false
			}
		}
		if text := strings.TrimSpace(sel.Text()); isDigits(text) {
			pmid = text
			return false
		}
		return true
	})
	return pmid
}

func isGEOAccession(accession string) bool {
	for _, prefix := range []string{"GSE", "GSM", "GDS", "GPL"} {
		if strings.HasPrefix(accession, prefix) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
