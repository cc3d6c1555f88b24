// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns resolution output into a validated Result. The
// primary contract is a JSON object with nullable pmid/pmcid/preprint_doi/
// message keys; the regex pattern families exist as a compatibility shim
// for free-text responses. Extraction is total: it never panics past its
// boundary, returning a null-filled result with an explanatory message
// instead.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// Strict PMID surface forms, tried in order: plain label, PubMed ID label,
// markdown-bolded label, markdown list item.
var pmidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PMID:?\s*(\d+)`),
	regexp.MustCompile(`(?i)PMID\s+(\d+)`),
	regexp.MustCompile(`(?i)PubMed\s+ID:?\s*(\d+)`),
	regexp.MustCompile(`(?i)\*\*PMID:\*\*\s*(\d+)`),
	regexp.MustCompile(`(?i)\*\*PMID\*\*:?\s*(\d+)`),
	regexp.MustCompile(`(?i)-\s*\*\*PMID:\*\*\s*(\d+)`),
	regexp.MustCompile(`(?i)-\s*\*\*PMID\*\*:?\s*(\d+)`),
}

// PMCID forms; bare digit captures are re-prefixed with "PMC".
var pmcidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PMCID:?\s*(PMC\d+)`),
	regexp.MustCompile(`(?i)PMCID\s+(PMC\d+)`),
	regexp.MustCompile(`(?i)PMC:?\s+(\d+)`),
	regexp.MustCompile(`(?i)PMC\s+ID:?\s*(PMC\d+)`),
	regexp.MustCompile(`(?i)PMC\s+ID:?\s*(\d+)`),
	regexp.MustCompile(`(?i)\*\*PMCID:\*\*\s*(PMC\d+)`),
	regexp.MustCompile(`(?i)\*\*PMCID\*\*:?\s*(PMC\d+)`),
	regexp.MustCompile(`(?i)-\s*\*\*PMCID:\*\*\s*(PMC\d+)`),
	regexp.MustCompile(`(?i)-\s*\*\*PMCID\*\*:?\s*(PMC\d+)`),
}

// Loose proximity fallbacks, used only when every strict form misses.
var (
	loosePMIDPattern  = regexp.MustCompile(`(?i)PMID.*?(\d+)`)
	loosePMCIDPattern = regexp.MustCompile(`(?i)PMC\D*?(\d+)`)
)

var (
	doiMentionPattern   = regexp.MustCompile(`(?i)DOI:?\s*(10\.\d+/[^\s"']+)`)
	quotedTitlePattern  = regexp.MustCompile(`titled\s+"([^"]+)"`)
	jsonObjectPattern   = regexp.MustCompile(`(?s)\{.*\}`)
	publicationSections = regexp.MustCompile(`Publication \d+:|Paper \d+:`)
)

// structuredResponse is the primary response contract: all keys present,
// nullable where unknown.
type structuredResponse struct {
	PMID        *string `json:"pmid"`
	PMCID       *string `json:"pmcid"`
	PreprintDOI *string `json:"preprint_doi"`
	Title       *string `json:"title"`
	Message     *string `json:"message"`
}

// FromResponse parses resolution output, structured or free-text, into a
// Result. Identifier fields are normalized; the discovery source is taken
// from an explicit SOURCE tag when present and inferred from phrasing
// otherwise.
func FromResponse(text string) (res types.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = types.Result{
				Source:  types.SourceUnknown,
				Message: fmt.Sprintf("internal extraction error: %v", r),
			}
		}
	}()

	res.Source = classifySource(text)
	res.MultiplePublications, res.AllPublications = extractMultiple(text)

	if sr, ok := parseStructured(text); ok {
		res.PMID = deref(sr.PMID)
		res.PMCID = ident.NormalizePMCID(deref(sr.PMCID))
		res.PreprintDOI = ident.NormalizeDOI(deref(sr.PreprintDOI))
		res.Title = deref(sr.Title)
		res.Message = deref(sr.Message)
		if res.Message == "" {
			res.Message = text
		}
		return res
	}

	res.PMID, res.PMCID = extractIDs(text)
	res.PreprintDOI = extractDOI(text)
	res.Title = extractTitle(text)
	res.Message = text
	return res
}

func parseStructured(text string) (*structuredResponse, bool) {
	m := jsonObjectPattern.FindString(text)
	if m == "" {
		return nil, false
	}
	var sr structuredResponse
	if err := json.Unmarshal([]byte(m), &sr); err != nil {
		return nil, false
	}
	return &sr, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// extractIDs applies the strict pattern families, then the loose proximity
// fallbacks.
func extractIDs(text string) (pmid, pmcid string) {
	for _, p := range pmidPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			pmid = m[1]
			break
		}
	}
	for _, p := range pmcidPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			pmcid = ident.NormalizePMCID(m[1])
			break
		}
	}
	if pmid == "" {
		if m := loosePMIDPattern.FindStringSubmatch(text); m != nil {
			pmid = m[1]
		}
	}
	if pmcid == "" {
		if m := loosePMCIDPattern.FindStringSubmatch(text); m != nil {
			pmcid = ident.NormalizePMCID(m[1])
		}
	}
	return pmid, pmcid
}

func extractDOI(text string) string {
	if m := doiMentionPattern.FindStringSubmatch(text); m != nil {
		return ident.NormalizeDOI(m[1])
	}
	return ""
}

func extractTitle(text string) string {
	if m := quotedTitlePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// classifySource honors the explicit SOURCE tag, falling back to phrase
// co-occurrence, then unknown.
func classifySource(text string) types.DiscoverySource {
	switch {
	case strings.Contains(text, "SOURCE: DIRECT_LINK"):
		return types.SourceDirectLink
	case strings.Contains(text, "SOURCE: GOOGLE_SEARCH"):
		return types.SourceGoogleSearch
	case strings.Contains(text, "SOURCE: NOT_FOUND"):
		return types.SourceNotFound
	}

	for _, phrase := range []string{"linked in GEO", "linked in SRA", "linked in ArrayExpress", "direct link", "elink"} {
		if strings.Contains(text, phrase) {
			return types.SourceDirectLink
		}
	}
	for _, phrase := range []string{"Google search", "searched for", "found through search"} {
		if strings.Contains(text, phrase) {
			return types.SourceGoogleSearch
		}
	}
	return types.SourceUnknown
}

// extractMultiple detects a multiple-publication report and pulls each
// listed publication out of its section.
func extractMultiple(text string) (bool, []types.Publication) {
	lower := strings.ToLower(text)
	multiple := false
	for _, phrase := range []string{"multiple publications", "several publications", "found multiple"} {
		if strings.Contains(lower, phrase) {
			multiple = true
			break
		}
	}
	if !multiple {
		return false, nil
	}

	sections := publicationSections.Split(text, -1)
	if len(sections) < 2 {
		return true, nil
	}

	var pubs []types.Publication
	for _, section := range sections[1:] {
		pmid, pmcid := extractIDs(section)
		if pmid == "" && pmcid == "" {
			continue
		}
		pubs = append(pubs, types.Publication{
			PMID:  pmid,
			PMCID: pmcid,
			Title: extractTitle(section),
		})
	}
	return true, pubs
}
