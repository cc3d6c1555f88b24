// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the publication resolver:
// accessions and their repository kinds, candidate publications, resolution
// results, and per-stage configuration.
package types

import (
	"regexp"
	"strings"
)

// AccessionKind classifies an accession by the repository record type it names.
type AccessionKind int

const (
	KindUnknown AccessionKind = iota
	KindSRAStudy
	KindSRAExperiment
	KindSRARun
	KindBioProject
	KindGEOSeries
	KindGEOSample
	KindGEOPlatform
	KindArrayExpress
)

func (k AccessionKind) String() string {
	switch k {
	case KindSRAStudy:
		return "sra_study"
	case KindSRAExperiment:
		return "sra_experiment"
	case KindSRARun:
		return "sra_run"
	case KindBioProject:
		return "bioproject"
	case KindGEOSeries:
		return "geo_series"
	case KindGEOSample:
		return "geo_sample"
	case KindGEOPlatform:
		return "geo_platform"
	case KindArrayExpress:
		return "arrayexpress"
	default:
		return "unknown"
	}
}

// EntrezDB returns the Entrez database that indexes accessions of this kind,
// or "" for kinds not indexed by Entrez (ArrayExpress, unknown).
func (k AccessionKind) EntrezDB() string {
	switch k {
	case KindSRAStudy, KindSRAExperiment, KindSRARun:
		return "sra"
	case KindBioProject:
		return "bioproject"
	case KindGEOSeries, KindGEOSample, KindGEOPlatform:
		return "gds"
	default:
		return ""
	}
}

// Accession classification patterns. Anchored so partial matches never
// misclassify (e.g. "GSE12" inside a sentence).
var (
	sraStudyPattern      = regexp.MustCompile(`^[SED]RP\d+$`)
	sraExperimentPattern = regexp.MustCompile(`^[SED]RX\d+$`)
	sraRunPattern        = regexp.MustCompile(`^[SED]RR\d+$`)
	bioProjectPattern    = regexp.MustCompile(`^PRJ(?:NA|EB|DB)\d+$`)
	geoSeriesPattern     = regexp.MustCompile(`^GSE\d+$`)
	geoSamplePattern     = regexp.MustCompile(`^GSM\d+$`)
	geoPlatformPattern   = regexp.MustCompile(`^GPL\d+$`)
	arrayExpressPattern  = regexp.MustCompile(`^E-[A-Z]{4}-\d+$`)
)

// Accession is a public identifier for a deposited dataset, tagged with the
// repository record kind it names.
type Accession struct {
	ID   string        `json:"id" yaml:"id"`
	Kind AccessionKind `json:"kind" yaml:"kind"`
}

// ClassifyAccession determines the accession kind and returns the normalized
// (trimmed, upper-cased) form.
func ClassifyAccession(raw string) Accession {
	id := strings.ToUpper(strings.TrimSpace(raw))

	switch {
	case sraStudyPattern.MatchString(id):
		return Accession{ID: id, Kind: KindSRAStudy}
	case sraExperimentPattern.MatchString(id):
		return Accession{ID: id, Kind: KindSRAExperiment}
	case sraRunPattern.MatchString(id):
		return Accession{ID: id, Kind: KindSRARun}
	case bioProjectPattern.MatchString(id):
		return Accession{ID: id, Kind: KindBioProject}
	case geoSeriesPattern.MatchString(id):
		return Accession{ID: id, Kind: KindGEOSeries}
	case geoSamplePattern.MatchString(id):
		return Accession{ID: id, Kind: KindGEOSample}
	case geoPlatformPattern.MatchString(id):
		return Accession{ID: id, Kind: KindGEOPlatform}
	case arrayExpressPattern.MatchString(id):
		return Accession{ID: id, Kind: KindArrayExpress}
	}
	return Accession{ID: id, Kind: KindUnknown}
}

// ExtractAccessions scans free text for accession identifiers and returns
// them classified, in order of first appearance, without duplicates.
func ExtractAccessions(text string) []Accession {
	var found []Accession
	seen := make(map[string]bool)
	for _, tok := range accessionTokenPattern.FindAllString(text, -1) {
		acc := ClassifyAccession(tok)
		if acc.Kind == KindUnknown || seen[acc.ID] {
			continue
		}
		seen[acc.ID] = true
		found = append(found, acc)
	}
	return found
}

// accessionTokenPattern matches candidate accession tokens inside prose.
var accessionTokenPattern = regexp.MustCompile(`[SED]R[PXR]\d+|PRJ(?:NA|EB|DB)\d+|G(?:SE|SM|PL)\d+|E-[A-Z]{4}-\d+`)
