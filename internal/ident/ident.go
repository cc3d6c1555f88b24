// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident canonicalizes publication identifiers: DOIs (preprint
// version suffixes stripped), PMCIDs (fixed "PMC" prefix), and PMIDs.
package ident

import (
	"regexp"
	"strings"
)

// doiVersionPattern matches a trailing preprint version suffix: "v1", "v2".
var doiVersionPattern = regexp.MustCompile(`v\d+$`)

// doiPattern matches a DOI anywhere in a string: "10.1101/2025.02.26.640382".
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:\w]+`)

// pmcidPattern matches a well-formed PMCID.
var pmcidPattern = regexp.MustCompile(`^PMC\d+$`)

// pmidPattern matches a well-formed PMID.
var pmidPattern = regexp.MustCompile(`^\d+$`)

// NormalizeDOI canonicalizes a DOI: surrounding whitespace and trailing
// punctuation are trimmed and a trailing version suffix ("v1", "v2") is
// removed. Empty input yields empty output. Idempotent.
func NormalizeDOI(raw string) string {
	doi := strings.TrimSpace(raw)
	if doi == "" {
		return ""
	}
	doi = strings.TrimRight(doi, ".,;)")
	return doiVersionPattern.ReplaceAllString(doi, "")
}

// DOIsEquivalent reports whether two DOIs name the same record: both empty,
// or both normalizing to the same string.
func DOIsEquivalent(a, b string) bool {
	return NormalizeDOI(a) == NormalizeDOI(b)
}

// ExtractDOI pulls a DOI out of a URL or free-form string, normalized.
// Returns "" when no DOI is present.
func ExtractDOI(urlOrDOI string) string {
	s := strings.TrimSpace(urlOrDOI)
	if s == "" {
		return ""
	}
	s = strings.TrimRight(s, ".,;)")
	if m := doiPattern.FindString(s); m != "" {
		return NormalizeDOI(m)
	}
	if strings.HasPrefix(s, "10.") {
		return NormalizeDOI(s)
	}
	return ""
}

// NormalizePMCID canonicalizes a PMCID: bare digits gain the "PMC" prefix,
// a lower/mixed-case prefix is upper-cased, and a well-formed value passes
// through unchanged. Unrecognizable input yields "".
func NormalizePMCID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	if pmidPattern.MatchString(id) {
		return "PMC" + id
	}
	if len(id) > 3 && strings.EqualFold(id[:3], "PMC") {
		id = "PMC" + id[3:]
	}
	if pmcidPattern.MatchString(id) {
		return id
	}
	return ""
}

// NormalizePMID validates a PMID: digits pass through, anything else yields "".
func NormalizePMID(raw string) string {
	id := strings.TrimSpace(raw)
	if pmidPattern.MatchString(id) {
		return id
	}
	return ""
}

// StripPMCPrefix returns the digits of a PMCID, for APIs that take the
// numeric form.
func StripPMCPrefix(pmcid string) string {
	id := strings.TrimSpace(pmcid)
	if len(id) >= 3 && strings.EqualFold(id[:3], "PMC") {
		return id[3:]
	}
	return id
}
