// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"

	"github.com/maarten-devries/SRAgent/internal/biostudies"
	"github.com/maarten-devries/SRAgent/internal/entrez"
	"github.com/maarten-devries/SRAgent/internal/websearch"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// Toolset is the closed set of retrieval capabilities the resolver may
// invoke. The priority order and stopping condition live in the resolver,
// not in the tools; a tool implementation never decides strategy.
type Toolset interface {
	// GEOPagePMID extracts the cited PMID from a GEO accession display page.
	GEOPagePMID(ctx context.Context, accession string) (string, error)

	// ArrayExpressInfo returns candidate publication IDs, authors, and title
	// for an ArrayExpress accession in one structured call.
	ArrayExpressInfo(ctx context.Context, accession string) (*biostudies.PublicationInfo, error)

	// UIDForAccession resolves an accession to its Entrez UID and database.
	UIDForAccession(ctx context.Context, acc types.Accession) (uid, db string, err error)

	// LinkedPMIDs walks repository-stored links to PubMed records.
	LinkedPMIDs(ctx context.Context, uid, fromDB string) ([]string, error)

	// StudySummary fetches record metadata (title, organism, center).
	StudySummary(ctx context.Context, db, uid string, acc types.Accession) (*entrez.StudySummary, error)

	// SubmitterAuthors fetches the repository's submitter author list.
	SubmitterAuthors(ctx context.Context, db, uid string) ([]string, error)

	// PMIDFromTitle searches PubMed for a publication by title.
	PMIDFromTitle(ctx context.Context, title string) (string, error)

	// PMIDFromDOI searches PubMed for the record carrying a DOI.
	PMIDFromDOI(ctx context.Context, doi string) (string, error)

	// PublicationDetails fetches the PubMed record for a PMID.
	PublicationDetails(ctx context.Context, pmid string) (*types.Publication, error)

	// PMCIDFromPMID and PMIDFromPMCID are the bidirectional cross-lookups.
	// Ambiguous links yield empty results, never an arbitrary pick.
	PMCIDFromPMID(ctx context.Context, pmid string) (string, error)
	PMIDFromPMCID(ctx context.Context, pmcid string) (string, error)

	// WebSearch runs a web search, degrading to a mock without credentials.
	WebSearch(ctx context.Context, query string, n int) ([]websearch.Result, error)

	// PreprintPublishedDOI checks bioRxiv and medRxiv for a published
	// version of a preprint.
	PreprintPublishedDOI(ctx context.Context, doi string) (string, error)
}

// Clients bundles the concrete tool clients into a Toolset.
type Clients struct {
	Entrez     *entrez.Client
	BioStudies *biostudies.Client
	GEO        geoClient
	Search     *websearch.Client
	Preprint   preprintClient
}

// The geo and preprint clients are tiny single-method clients; aliasing
// keeps the Clients literal readable at the call site.
type (
	geoClient interface {
		PMIDFromPage(ctx context.Context, accession string) (string, error)
	}
	preprintClient interface {
		PublishedDOI(ctx context.Context, doi string) (string, error)
	}
)

func (c *Clients) GEOPagePMID(ctx context.Context, accession string) (string, error) {
	return c.GEO.PMIDFromPage(ctx, accession)
}

func (c *Clients) ArrayExpressInfo(ctx context.Context, accession string) (*biostudies.PublicationInfo, error) {
	return c.BioStudies.Info(ctx, accession)
}

func (c *Clients) UIDForAccession(ctx context.Context, acc types.Accession) (string, string, error) {
	return c.Entrez.UIDForAccession(ctx, acc)
}

func (c *Clients) LinkedPMIDs(ctx context.Context, uid, fromDB string) ([]string, error) {
	return c.Entrez.LinkedPMIDs(ctx, uid, fromDB)
}

func (c *Clients) StudySummary(ctx context.Context, db, uid string, acc types.Accession) (*entrez.StudySummary, error) {
	return c.Entrez.StudySummary(ctx, db, uid, acc)
}

func (c *Clients) SubmitterAuthors(ctx context.Context, db, uid string) ([]string, error) {
	return c.Entrez.SubmitterAuthors(ctx, db, uid)
}

func (c *Clients) PMIDFromTitle(ctx context.Context, title string) (string, error) {
	return c.Entrez.PMIDFromTitle(ctx, title)
}

func (c *Clients) PMIDFromDOI(ctx context.Context, doi string) (string, error) {
	return c.Entrez.PMIDFromDOI(ctx, doi)
}

func (c *Clients) PublicationDetails(ctx context.Context, pmid string) (*types.Publication, error) {
	return c.Entrez.PublicationDetails(ctx, pmid)
}

func (c *Clients) PMCIDFromPMID(ctx context.Context, pmid string) (string, error) {
	return c.Entrez.PMCIDFromPMID(ctx, pmid)
}

func (c *Clients) PMIDFromPMCID(ctx context.Context, pmcid string) (string, error) {
	return c.Entrez.PMIDFromPMCID(ctx, pmcid)
}

func (c *Clients) WebSearch(ctx context.Context, query string, n int) ([]websearch.Result, error) {
	return c.Search.Search(ctx, query, n)
}

func (c *Clients) PreprintPublishedDOI(ctx context.Context, doi string) (string, error) {
	return c.Preprint.PublishedDOI(ctx, doi)
}
