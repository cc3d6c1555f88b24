// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DiscoverySource records how a publication was found.
type DiscoverySource string

const (
	// SourceDirectLink means the publication reference was stored by the
	// data repository itself (GEO, SRA, or ArrayExpress).
	SourceDirectLink DiscoverySource = "direct_link"

	// SourceGoogleSearch means the publication was found via web search.
	SourceGoogleSearch DiscoverySource = "google_search"

	// SourceNotFound means no publication was found.
	SourceNotFound DiscoverySource = "not_found"

	// SourceUnknown means the discovery path could not be classified.
	SourceUnknown DiscoverySource = "unknown"
)

// Publication is a candidate publication for a study. Identifier fields are
// empty strings when unknown; PMCID always carries the "PMC" prefix and
// PreprintDOI is stored version-stripped.
type Publication struct {
	// PMID is the PubMed identifier, digits only.
	PMID string `json:"pmid" yaml:"pmid"`

	// PMCID is the PubMed Central identifier ("PMC" + digits).
	PMCID string `json:"pmcid" yaml:"pmcid"`

	// PreprintDOI is set only when no peer-reviewed record was confirmed.
	PreprintDOI string `json:"preprint_doi" yaml:"preprint_doi"`

	// Title is the publication title, when known.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists publication authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Journal is the journal title, when known.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Date is the publication date; the zero time when unknown. Always
	// serialized (omitempty never fires for struct values).
	Date time.Time `json:"date" yaml:"date"`
}

// IsEmpty reports whether no identifier field is set.
func (p Publication) IsEmpty() bool {
	return p.PMID == "" && p.PMCID == "" && p.PreprintDOI == ""
}

// Complete reports whether both the PubMed and PubMed Central identifiers
// are known, which is the resolution stopping condition.
func (p Publication) Complete() bool {
	return p.PMID != "" && p.PMCID != ""
}

// Result is the outcome of resolving an accession set. It is constructed
// once per query and not mutated after return.
type Result struct {
	Publication `yaml:",inline"`

	// Source classifies the discovery path.
	Source DiscoverySource `json:"source" yaml:"source"`

	// Message is a human-readable account of what was tried and found.
	Message string `json:"message" yaml:"message"`

	// MultiplePublications is true when several genuinely distinct,
	// database-linked publications were found. Never set for search-derived
	// discoveries.
	MultiplePublications bool `json:"multiple_publications" yaml:"multiple_publications"`

	// AllPublications lists every candidate when MultiplePublications is
	// true; the embedded Publication is the selected primary.
	AllPublications []Publication `json:"all_publications,omitempty" yaml:"all_publications,omitempty"`
}

// NotFound returns a fully populated empty result with the given message.
func NotFound(message string) Result {
	return Result{Source: SourceNotFound, Message: message}
}
