// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// StudySummary is the metadata block for a data-repository record, used for
// title search and author verification.
type StudySummary struct {
	Accession string
	Database  string
	Title     string
	Summary   string
	Organism  string
	Center    string
	ExpType   string
}

// Format renders the summary as the human-readable block reported to the
// caller alongside the resolution result.
func (s *StudySummary) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Study Title: %s\n", orUnknown(s.Title, "No title available"))
	if s.ExpType != "" {
		fmt.Fprintf(&b, "Experiment Type: %s\n", s.ExpType)
	}
	if s.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", s.Summary)
	}
	fmt.Fprintf(&b, "Organism: %s\n", orUnknown(s.Organism, "Unknown organism"))
	if s.Center != "" {
		fmt.Fprintf(&b, "Center/Institution: %s\n", s.Center)
	}
	fmt.Fprintf(&b, "Accession: %s", s.Accession)
	return b.String()
}

func orUnknown(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// SRA docsums carry their experiment metadata as an XML fragment in the
// "expxml" field rather than as JSON keys.
var (
	expTitlePattern    = regexp.MustCompile(`<Title>(.*?)</Title>`)
	expOrganismPattern = regexp.MustCompile(`<Organism[^>]*ScientificName="([^"]*)"`)
	expCenterPattern   = regexp.MustCompile(`center_name="([^"]*)"`)
	expContactPattern  = regexp.MustCompile(`contact_name="([^"]*)"`)
	expTypePattern     = regexp.MustCompile(`<LIBRARY_STRATEGY>(.*?)</LIBRARY_STRATEGY>`)
)

type sraDocSum struct {
	ExpXML string `json:"expxml"`
}

type gdsDocSum struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Taxon   string `json:"taxon"`
}

type bioprojectDocSum struct {
	Title       string `json:"project_title"`
	Description string `json:"project_description"`
	Organism    string `json:"project_organism_name"`
}

// StudySummary fetches and normalizes the record metadata for a UID. Field
// names differ per database, so each gets its own docsum shape.
func (c *Client) StudySummary(ctx context.Context, db, uid string, acc types.Accession) (*StudySummary, error) {
	doc, err := c.esummary(ctx, db, uid)
	if err != nil {
		return nil, err
	}

	out := &StudySummary{Accession: acc.ID, Database: db}
	switch db {
	case "sra":
		var d sraDocSum
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("parsing sra summary: %w", err)
		}
		out.Title = xmlField(expTitlePattern, d.ExpXML)
		out.Organism = xmlField(expOrganismPattern, d.ExpXML)
		out.Center = xmlField(expCenterPattern, d.ExpXML)
		out.ExpType = xmlField(expTypePattern, d.ExpXML)
	case "gds":
		var d gdsDocSum
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("parsing gds summary: %w", err)
		}
		out.Title = d.Title
		out.Summary = d.Summary
		out.Organism = d.Taxon
	case "bioproject":
		var d bioprojectDocSum
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("parsing bioproject summary: %w", err)
		}
		out.Title = d.Title
		out.Summary = d.Description
		out.Organism = d.Organism
	default:
		var generic map[string]any
		if err := json.Unmarshal(doc, &generic); err != nil {
			return nil, fmt.Errorf("parsing %s summary: %w", db, err)
		}
		for _, key := range []string{"Title", "title", "project_title", "name"} {
			if v, ok := generic[key].(string); ok && v != "" {
				out.Title = v
				break
			}
		}
	}
	return out, nil
}

func xmlField(p *regexp.Regexp, s string) string {
	if m := p.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// SubmitterAuthors returns the submitter author names recorded on a
// repository docsum. These are often only a subset of the eventual paper's
// authorship, and many records carry none at all.
func (c *Client) SubmitterAuthors(ctx context.Context, db, uid string) ([]string, error) {
	doc, err := c.esummary(ctx, db, uid)
	if err != nil {
		return nil, err
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, fmt.Errorf("parsing %s summary: %w", db, err)
	}

	for _, key := range []string{"authors", "Authors"} {
		raw, ok := generic[key]
		if !ok {
			continue
		}
		// Either a comma-separated string or a list of {name} objects.
		var joined string
		if err := json.Unmarshal(raw, &joined); err == nil {
			return splitNames(joined), nil
		}
		var objs []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &objs); err == nil {
			var names []string
			for _, o := range objs {
				if o.Name != "" {
					names = append(names, o.Name)
				}
			}
			return names, nil
		}
	}

	// SRA records list only the submitting contact, inside expxml.
	if raw, ok := generic["expxml"]; ok {
		var xml string
		if err := json.Unmarshal(raw, &xml); err == nil {
			if contact := xmlField(expContactPattern, xml); contact != "" {
				return []string{contact}, nil
			}
		}
	}
	return nil, nil
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type pubmedDocSum struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	PubDate         string `json:"pubdate"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
	PubType []string `json:"pubtype"`
}

// PublicationDetails fetches the PubMed record for a PMID, including the
// linked PMCID and DOI when the record carries them.
func (c *Client) PublicationDetails(ctx context.Context, pmid string) (*types.Publication, error) {
	doc, err := c.esummary(ctx, "pubmed", pmid)
	if err != nil {
		return nil, err
	}

	var d pubmedDocSum
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("parsing pubmed summary: %w", err)
	}

	pub := &types.Publication{
		PMID:    pmid,
		Title:   d.Title,
		Journal: d.FullJournalName,
	}
	for _, a := range d.Authors {
		if a.Name != "" {
			pub.Authors = append(pub.Authors, a.Name)
		}
	}
	for _, id := range d.ArticleIDs {
		switch id.IDType {
		case "pmc", "pmcid":
			if pmcid := ident.NormalizePMCID(id.Value); pmcid != "" {
				pub.PMCID = pmcid
			}
		}
	}
	pub.Date = parsePubDate(d.PubDate)
	return pub, nil
}

// IsCorrection reports whether a PubMed record is a correction, erratum, or
// corrigendum rather than an original article. These are never reported as
// the resolution result.
func IsCorrection(pub *types.Publication) bool {
	title := strings.ToLower(pub.Title)
	for _, marker := range []string{"erratum", "corrigendum", "correction to", "correction:", "author correction", "publisher correction", "retraction"} {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

// pubdate shows up as "2023 Jan 5", "2023 Jan", or just "2023".
func parsePubDate(s string) time.Time {
	for _, layout := range []string{"2006 Jan 2", "2006 Jan", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
