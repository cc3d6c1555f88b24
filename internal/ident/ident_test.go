// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ident

import "testing"

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  ", ""},
		{"plain", "10.1038/s41586-021-03710-0", "10.1038/s41586-021-03710-0"},
		{"version suffix", "10.1101/2025.02.26.640382v1", "10.1101/2025.02.26.640382"},
		{"later version", "10.1101/2025.02.26.640382v12", "10.1101/2025.02.26.640382"},
		{"trailing punctuation", "10.1101/2024.01.01.573843.", "10.1101/2024.01.01.573843"},
		{"punctuation then version", "10.1101/2024.01.01.573843v2,", "10.1101/2024.01.01.573843"},
		{"surrounding space", " 10.1101/2024.01.01.573843 ", "10.1101/2024.01.01.573843"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDOI(tt.in); got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDOIIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"10.1101/2025.02.26.640382v1",
		"10.1038/s41586-021-03710-0",
		"10.1101/2024.01.01.573843.",
	}
	for _, in := range inputs {
		once := NormalizeDOI(in)
		twice := NormalizeDOI(once)
		if once != twice {
			t.Errorf("NormalizeDOI not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestDOIsEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"both empty", "", "", true},
		{"version variants", "10.1101/2025.02.26.640382v1", "10.1101/2025.02.26.640382v2", true},
		{"versioned vs bare", "10.1101/2025.02.26.640382v1", "10.1101/2025.02.26.640382", true},
		{"different records", "10.1101/2025.02.26.640382", "10.1101/2024.01.01.573843", false},
		{"one empty", "10.1101/2025.02.26.640382", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOIsEquivalent(tt.a, tt.b); got != tt.want {
				t.Errorf("DOIsEquivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExtractDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bare doi", "10.1101/2025.02.26.640382", "10.1101/2025.02.26.640382"},
		{"doi.org url", "https://doi.org/10.1038/s41586-021-03710-0", "10.1038/s41586-021-03710-0"},
		{"url with trailing paren", "https://doi.org/10.1038/s41586-021-03710-0)", "10.1038/s41586-021-03710-0"},
		{"not a doi", "https://example.com/paper.pdf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDOI(tt.in); got != tt.want {
				t.Errorf("ExtractDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePMCID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bare digits", "10014110", "PMC10014110"},
		{"already tagged", "PMC10014110", "PMC10014110"},
		{"lowercase prefix", "pmc10014110", "PMC10014110"},
		{"garbage", "PMCID: what", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePMCID(tt.in); got != tt.want {
				t.Errorf("NormalizePMCID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripPMCPrefix(t *testing.T) {
	if got := StripPMCPrefix("PMC10014110"); got != "10014110" {
		t.Errorf("StripPMCPrefix(PMC10014110) = %q, want 10014110", got)
	}
	if got := StripPMCPrefix("10014110"); got != "10014110" {
		t.Errorf("StripPMCPrefix(10014110) = %q, want 10014110", got)
	}
}

func TestNormalizePMID(t *testing.T) {
	if got := NormalizePMID(" 36602862 "); got != "36602862" {
		t.Errorf("NormalizePMID = %q, want 36602862", got)
	}
	if got := NormalizePMID("PMID: 36602862"); got != "" {
		t.Errorf("NormalizePMID on labeled input = %q, want empty", got)
	}
}
