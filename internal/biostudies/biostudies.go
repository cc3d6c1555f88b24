// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package biostudies queries the EBI BioStudies API for ArrayExpress
// records. Unlike SRA and GEO, ArrayExpress stores publication metadata
// (candidate IDs, authors, title) in a single structured record.
package biostudies

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maarten-devries/SRAgent/internal/httputil"
	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// biostudiesAPIBase is the BioStudies study endpoint. Declared as a var so
// tests can substitute an httptest server.
var biostudiesAPIBase = "https://www.ebi.ac.uk/biostudies/api/v1/studies"

// Client fetches ArrayExpress study records from BioStudies.
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

// PublicationInfo holds what an ArrayExpress record says about its
// associated publication.
type PublicationInfo struct {
	// IDs are candidate publication identifiers: PMIDs and DOIs, deduplicated.
	IDs []string

	// Authors are the study authors, in record order.
	Authors []string

	// Title is the publication title when recorded, else the study title.
	Title string
}

type study struct {
	Section section `json:"section"`
}

type section struct {
	Type        string      `json:"type"`
	AccNo       string      `json:"accno"`
	Attributes  []attribute `json:"attributes"`
	Links       []link      `json:"links"`
	Subsections []section   `json:"subsections"`
}

type attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type link struct {
	URL string `json:"url"`
}

// Sections nest arbitrarily and subsections sometimes arrive as arrays of
// sections rather than single objects; tolerate both.
func (s *section) UnmarshalJSON(data []byte) error {
	type plain section
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*s = section(p)
		return nil
	}
	var many []section
	if err := json.Unmarshal(data, &many); err == nil && len(many) > 0 {
		*s = many[0]
		s.Subsections = append(s.Subsections, many[1:]...)
		return nil
	}
	// Unrecognized shape: leave the section empty rather than failing the
	// whole record.
	*s = section{}
	return nil
}

// Info fetches the publication info for an ArrayExpress accession. Only
// E-MTAB accessions are indexed; anything else returns an empty result
// without a network call.
func (c *Client) Info(ctx context.Context, accession string) (*PublicationInfo, error) {
	if !strings.HasPrefix(accession, "E-MTAB-") {
		return &PublicationInfo{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, biostudiesAPIBase+"/"+accession, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("BioStudies API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("BioStudies API returned HTTP %d", resp.StatusCode)
	}

	var st study
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("parsing BioStudies response: %w", err)
	}

	info := &PublicationInfo{}
	collect(&st.Section, info)
	info.IDs = dedupe(info.IDs)
	return info, nil
}

// Authors fetches only the author list for an ArrayExpress accession.
func (c *Client) Authors(ctx context.Context, accession string) ([]string, error) {
	info, err := c.Info(ctx, accession)
	if err != nil {
		return nil, err
	}
	return info.Authors, nil
}

func collect(sec *section, info *PublicationInfo) {
	for i := range sec.Subsections {
		sub := &sec.Subsections[i]
		switch sub.Type {
		case "Publication":
			// The subsection accession number is usually the PMID.
			if isDigits(sub.AccNo) {
				info.IDs = append(info.IDs, sub.AccNo)
			}
			for _, a := range sub.Attributes {
				switch a.Name {
				case "Title":
					if info.Title == "" {
						info.Title = a.Value
					}
				case "Authors":
					for _, name := range strings.Split(a.Value, ", ") {
						if name = strings.TrimSpace(name); name != "" {
							info.Authors = append(info.Authors, name)
						}
					}
				case "DOI", "Pubmed ID":
					if doi := ident.ExtractDOI(a.Value); doi != "" {
						info.IDs = append(info.IDs, doi)
					} else if isDigits(a.Value) {
						info.IDs = append(info.IDs, a.Value)
					}
				}
			}
			for _, l := range sub.Links {
				if strings.Contains(l.URL, "doi.org") {
					if doi := ident.ExtractDOI(l.URL); doi != "" {
						info.IDs = append(info.IDs, doi)
					}
				}
			}
		case "Author":
			for _, a := range sub.Attributes {
				if a.Name == "Name" && a.Value != "" {
					info.Authors = append(info.Authors, a.Value)
				}
			}
		case "Title":
			for _, a := range sub.Attributes {
				if a.Name == "Text" && info.Title == "" {
					info.Title = a.Value
				}
			}
		}
		collect(sub, info)
	}
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

func dedupe(ids []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
