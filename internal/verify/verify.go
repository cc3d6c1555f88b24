// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify decides whether a publication found by title search really
// belongs to a data accession. Title search has a material false-positive
// rate, so a candidate must show a plausible author overlap with the
// repository's submitter record before it is accepted. Database-link
// discoveries are authoritative and never pass through here.
package verify

import "strings"

// Decision is the verifier's qualitative outcome. No numeric confidence is
// exposed; the policy is "is it plausible this is a subset / name variant
// match, optionally supported by institution overlap".
type Decision int

const (
	// Unverified means verification could not proceed (no submitter record
	// or no publication authors). Never treated as a silent pass.
	Unverified Decision = iota

	// NoMatch means the author lists are implausible as the same group.
	NoMatch

	// Match means the candidate plausibly belongs to the accession.
	Match
)

func (d Decision) String() string {
	switch d {
	case Match:
		return "match"
	case NoMatch:
		return "no_match"
	default:
		return "unverified"
	}
}

// Verify compares a candidate publication's author list and institution
// against the data source's submitter record. Submitter lists are often a
// subset of full paper authorship, so subset overlap accepts:
//   - two or more surname matches accept outright;
//   - a single surname match accepts when it is the only submitter, or when
//     the institutions overlap;
//   - zero matches reject.
//
// Empty inputs on either side yield Unverified.
func Verify(pubAuthors []string, pubInstitution string, subAuthors []string, subInstitution string) Decision {
	if len(subAuthors) == 0 || len(pubAuthors) == 0 {
		return Unverified
	}

	pub := parseNames(pubAuthors)
	matched := 0
	for _, sub := range parseNames(subAuthors) {
		for _, p := range pub {
			if namesPlausiblyMatch(sub, p) {
				matched++
				break
			}
		}
	}

	switch {
	case matched >= 2:
		return Match
	case matched == 1 && len(subAuthors) == 1:
		return Match
	case matched == 1 && institutionsOverlap(pubInstitution, subInstitution):
		return Match
	default:
		return NoMatch
	}
}

type name struct {
	surname string
	given   string
}

func parseNames(raw []string) []name {
	names := make([]name, 0, len(raw))
	for _, r := range raw {
		if n, ok := parseName(r); ok {
			names = append(names, n)
		}
	}
	return names
}

// parseName handles the formats the sources produce: "Last, First",
// "Last Initials" (PubMed style, e.g. "Smith JA"), and "First Last".
func parseName(raw string) (name, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return name{}, false
	}

	if i := strings.Index(raw, ","); i >= 0 {
		return name{
			surname: strings.TrimSpace(raw[:i]),
			given:   strings.TrimSpace(raw[i+1:]),
		}, true
	}

	fields := strings.Fields(raw)
	if len(fields) == 1 {
		return name{surname: fields[0]}, true
	}

	last := fields[len(fields)-1]
	if looksLikeInitials(last) {
		return name{
			surname: strings.Join(fields[:len(fields)-1], " "),
			given:   last,
		}, true
	}
	return name{
		surname: last,
		given:   strings.Join(fields[:len(fields)-1], " "),
	}, true
}

func looksLikeInitials(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// namesPlausiblyMatch accepts surname variants: exact (case-insensitive)
// equality, or a shared component of a hyphenated or appended surname
// ("Smith" matches "Smith-Jones" and "Smith Jones"). When both sides carry
// given names, their first initials must agree.
func namesPlausiblyMatch(a, b name) bool {
	if !surnamesMatch(a.surname, b.surname) {
		return false
	}
	if a.given == "" || b.given == "" {
		return true
	}
	return initial(a.given) == initial(b.given)
}

func surnamesMatch(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	for _, ca := range surnameComponents(a) {
		for _, cb := range surnameComponents(b) {
			if strings.EqualFold(ca, cb) {
				return true
			}
		}
	}
	return false
}

func surnameComponents(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ' '
	})
}

func initial(given string) rune {
	for _, r := range given {
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
		if r >= 'A' && r <= 'Z' {
			return r
		}
	}
	return 0
}

// institutionStopwords are generic tokens that would make any two
// institution names overlap.
var institutionStopwords = map[string]bool{
	"university": true, "institute": true, "institution": true,
	"department": true, "dept": true, "school": true, "college": true,
	"center": true, "centre": true, "laboratory": true, "lab": true,
	"hospital": true, "medical": true, "medicine": true, "national": true,
	"research": true, "science": true, "sciences": true, "health": true,
	"of": true, "for": true, "the": true, "and": true, "de": true,
}

// institutionsOverlap reports whether two institution strings share a
// distinctive token.
func institutionsOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	tokens := make(map[string]bool)
	for _, tok := range tokenize(a) {
		tokens[tok] = true
	}
	for _, tok := range tokenize(b) {
		if tokens[tok] {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(tok) > 1 && !institutionStopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}
