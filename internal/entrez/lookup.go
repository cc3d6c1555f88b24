// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"context"
	"regexp"
	"strings"

	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// UIDForAccession resolves an accession to its internal Entrez UID and the
// database the UID lives in. BioProject accessions frequently index under
// sra rather than bioproject, and PRJNA numbers are sometimes only findable
// by their bare numeric part, so several fallbacks are tried in order.
// A not-found outcome is (empty, empty, nil), not an error.
func (c *Client) UIDForAccession(ctx context.Context, acc types.Accession) (uid, db string, err error) {
	primary := acc.Kind.EntrezDB()
	if primary == "" {
		primary = "sra"
	}

	attempts := []struct {
		db   string
		term string
	}{
		{primary, acc.ID},
	}
	if primary == "bioproject" {
		attempts = append(attempts, struct{ db, term string }{"sra", acc.ID})
		if numeric := strings.TrimPrefix(acc.ID, "PRJNA"); numeric != acc.ID {
			attempts = append(attempts,
				struct{ db, term string }{"bioproject", numeric},
				struct{ db, term string }{"sra", numeric},
			)
		}
	}

	for _, a := range attempts {
		ids, serr := c.esearch(ctx, a.db, a.term, 5)
		if serr != nil {
			err = serr
			continue
		}
		if len(ids) > 0 {
			return ids[0], a.db, nil
		}
	}
	if err != nil {
		return "", "", err
	}
	return "", "", nil
}

// LinkedPMIDs walks database links from a UID to the PubMed literature
// records the repository has registered for it.
func (c *Client) LinkedPMIDs(ctx context.Context, uid, fromDB string) ([]string, error) {
	return c.elink(ctx, fromDB, "pubmed", uid)
}

// PMCIDFromPMID returns the full-text archive ID linked to a PubMed record.
// More than one link is ambiguous: there is no basis to prefer one, so the
// result is empty with a logged warning. Returns empty, not an error, when
// no link exists.
func (c *Client) PMCIDFromPMID(ctx context.Context, pmid string) (string, error) {
	links, err := c.elink(ctx, "pubmed", "pmc", pmid)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", nil
	}
	if len(links) > 1 {
		c.logf("warning: multiple PMCID links found for PMID %s", pmid)
		return "", nil
	}
	return ident.NormalizePMCID(links[0]), nil
}

// PMIDFromPMCID is the reverse cross-lookup, with the same ambiguity rule.
func (c *Client) PMIDFromPMCID(ctx context.Context, pmcid string) (string, error) {
	links, err := c.elink(ctx, "pmc", "pubmed", ident.StripPMCPrefix(pmcid))
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", nil
	}
	if len(links) > 1 {
		c.logf("warning: multiple PMID links found for PMCID %s", pmcid)
		return "", nil
	}
	return links[0], nil
}

// PMIDFromDOI searches PubMed for the record carrying a DOI. Returns empty,
// not an error, when PubMed has no such record.
func (c *Client) PMIDFromDOI(ctx context.Context, doi string) (string, error) {
	doi = ident.NormalizeDOI(doi)
	if doi == "" {
		return "", nil
	}
	ids, err := c.esearch(ctx, "pubmed", doi+"[DOI]", 1)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

var titleCleanPattern = regexp.MustCompile(`[^\w\s]`)

// PMIDFromTitle searches PubMed for a publication by exact title, retrying
// as an unquoted title-field search when the exact form finds nothing.
// Title search has a material false-positive rate; callers must gate the
// result through author verification.
func (c *Client) PMIDFromTitle(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", nil
	}
	cleaned := strings.Join(strings.Fields(titleCleanPattern.ReplaceAllString(title, " ")), " ")

	ids, err := c.esearch(ctx, "pubmed", `"`+cleaned+`"[Title]`, 5)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		ids, err = c.esearch(ctx, "pubmed", cleaned+"[Title]", 5)
		if err != nil {
			return "", err
		}
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}
