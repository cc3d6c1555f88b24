// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve implements the ordered search strategy that turns a set
// of accessions naming one study into its publication. Data sources are
// tried in a fixed priority order; title-search discoveries must pass
// author verification before acceptance; the procedure stops the moment
// both a PMID and a PMCID are confirmed.
package resolve

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/maarten-devries/SRAgent/internal/entrez"
	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/internal/verify"
	"github.com/maarten-devries/SRAgent/internal/websearch"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// DefaultStepBudget bounds tool invocations per resolution.
const DefaultStepBudget = 40

// Summarizer produces a short human-readable summary of one strategy step.
type Summarizer interface {
	SummarizeStep(ctx context.Context, step string) (string, error)
}

// Resolver drives a Toolset through the priority order. Safe for use from
// one goroutine at a time; run concurrent resolutions on separate Resolver
// values sharing the same Toolset.
type Resolver struct {
	Tools      Toolset
	Config     types.ResolveConfig
	Progress   io.Writer
	Summarizer Summarizer
}

// New builds a Resolver with defaults applied.
func New(tools Toolset, cfg types.ResolveConfig) *Resolver {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = DefaultStepBudget
	}
	if cfg.WebSearchResults <= 0 {
		cfg.WebSearchResults = 4
	}
	return &Resolver{Tools: tools, Config: cfg, Progress: io.Discard}
}

// searchState accumulates what one resolution has learned. It is discarded
// when Resolve returns.
type searchState struct {
	accessions []types.Accession
	best       types.Publication
	source     types.DiscoverySource
	multiple   bool
	all        []types.Publication
	title      string

	// preprint discoveries remember where they came from, so a
	// repository-stored preprint reference is not misreported as a
	// search find.
	preprint       string
	preprintSource types.DiscoverySource

	// study context for author verification, filled lazily. pubInstitution
	// is the candidate side, picked up from search-result citation
	// metatags when available.
	contextLoaded  bool
	submitters     []string
	center         string
	pubInstitution string

	steps    int
	budget   int
	attempts []string
	exceeded bool
}

func (s *searchState) done() bool {
	return s.best.Complete()
}

// spend consumes one step of the budget. Once the budget is exhausted every
// subsequent step is refused and the resolution returns its best-known
// partial result.
func (s *searchState) spend() bool {
	if s.steps >= s.budget {
		s.exceeded = true
		return false
	}
	s.steps++
	return true
}

func (s *searchState) note(format string, args ...any) {
	s.attempts = append(s.attempts, fmt.Sprintf(format, args...))
}

// Resolve runs the full strategy for a set of accessions asserted to name
// the same study. It always returns a complete Result; failures of single
// steps degrade to "no result for that step" and total failure is reported
// as data, never as an error.
func (r *Resolver) Resolve(ctx context.Context, accessions []types.Accession) types.Result {
	state := &searchState{
		accessions: accessions,
		source:     types.SourceUnknown,
		budget:     r.Config.StepBudget,
	}
	if len(accessions) == 0 {
		return types.NotFound("no accessions provided")
	}

	steps := []func(context.Context, *searchState){
		r.stepGEOPages,
		r.stepArrayExpress,
		r.stepEntrezLinks,
		r.stepTitleSearch,
		r.stepAccessionWebSearch,
		r.stepTitleWebSearch,
		r.stepPreprintServers,
	}
	for _, step := range steps {
		if state.done() || state.exceeded || ctx.Err() != nil {
			break
		}
		step(ctx, state)
	}

	return r.finalize(ctx, state)
}

// Step 1: GEO accessions have the publication cited on their display page.
func (r *Resolver) stepGEOPages(ctx context.Context, s *searchState) {
	for _, acc := range s.accessions {
		if acc.Kind != types.KindGEOSeries && acc.Kind != types.KindGEOSample {
			continue
		}
		if s.done() || !s.spend() {
			return
		}
		pmid, err := r.Tools.GEOPagePMID(ctx, acc.ID)
		if err != nil {
			s.note("GEO page lookup for %s failed: %v", acc.ID, err)
			continue
		}
		if pmid == "" {
			s.note("no citation on the GEO page for %s", acc.ID)
			continue
		}
		s.note("found PMID %s on the GEO page for %s", pmid, acc.ID)
		r.acceptDirect(ctx, s, []string{pmid})
	}
}

// Step 2: ArrayExpress records carry structured publication info. A title
// without an ID escalates to a verified title search.
func (r *Resolver) stepArrayExpress(ctx context.Context, s *searchState) {
	for _, acc := range s.accessions {
		if acc.Kind != types.KindArrayExpress {
			continue
		}
		if s.done() || !s.spend() {
			return
		}
		info, err := r.Tools.ArrayExpressInfo(ctx, acc.ID)
		if err != nil {
			s.note("ArrayExpress lookup for %s failed: %v", acc.ID, err)
			continue
		}
		if len(info.Authors) > 0 {
			s.submitters = append(s.submitters, info.Authors...)
			s.contextLoaded = true
		}
		if info.Title != "" && s.title == "" {
			s.title = info.Title
		}

		var pmids []string
		for _, id := range info.IDs {
			if isDigits(id) {
				pmids = append(pmids, id)
			} else if doi := ident.NormalizeDOI(id); strings.HasPrefix(doi, "10.1101/") && s.preprint == "" {
				s.preprint = doi
				s.preprintSource = types.SourceDirectLink
				s.note("ArrayExpress record for %s references preprint DOI %s", acc.ID, doi)
			}
		}
		if len(pmids) > 0 {
			s.note("ArrayExpress record for %s links PMID(s) %s", acc.ID, strings.Join(pmids, ", "))
			r.acceptDirect(ctx, s, pmids)
			continue
		}
		if info.Title == "" {
			s.note("no publication info on the ArrayExpress record for %s", acc.ID)
			continue
		}

		// Title but no ID: escalate to a title search, gated by author
		// verification.
		s.note("ArrayExpress record for %s has a publication title but no ID", acc.ID)
		r.verifiedTitleLookup(ctx, s, info.Title)
	}
}

// Step 3: sequence-archive and bioproject accessions resolve to an Entrez
// UID and then link-walk into PubMed.
func (r *Resolver) stepEntrezLinks(ctx context.Context, s *searchState) {
	for _, acc := range s.accessions {
		if acc.Kind.EntrezDB() == "" {
			continue
		}
		if s.done() || !s.spend() {
			return
		}
		uid, db, err := r.Tools.UIDForAccession(ctx, acc)
		if err != nil {
			s.note("Entrez lookup for %s failed: %v", acc.ID, err)
			continue
		}
		if uid == "" {
			s.note("no Entrez record for %s", acc.ID)
			continue
		}

		// Opportunistically load the study context for later verified steps.
		r.loadStudyContext(ctx, s, db, uid, acc)

		if !s.spend() {
			return
		}
		pmids, err := r.Tools.LinkedPMIDs(ctx, uid, db)
		if err != nil {
			s.note("link walk for %s (%s UID %s) failed: %v", acc.ID, db, uid, err)
			continue
		}
		if len(pmids) == 0 {
			s.note("no publications linked to %s in %s", acc.ID, db)
			continue
		}
		s.note("%s links %d publication(s) in %s", acc.ID, len(pmids), db)
		r.acceptDirect(ctx, s, pmids)
	}
}

// Step 4: once a title is known and no PMID has been found, search the
// literature database by title, gated by verification.
func (r *Resolver) stepTitleSearch(ctx context.Context, s *searchState) {
	if s.best.PMID != "" {
		return
	}
	r.ensureTitle(ctx, s)
	if s.title == "" {
		s.note("no study title available for title search")
		return
	}
	r.verifiedTitleLookup(ctx, s, s.title)
}

// Step 5: web search each accession string, quoted, individually. Runs
// only while no identifier has been found at all.
func (r *Resolver) stepAccessionWebSearch(ctx context.Context, s *searchState) {
	if s.best.PMID != "" || s.best.PMCID != "" {
		return
	}
	for _, acc := range s.accessions {
		if s.done() || !s.spend() {
			return
		}
		results, err := r.Tools.WebSearch(ctx, fmt.Sprintf("%q", acc.ID), r.Config.WebSearchResults)
		if err != nil {
			s.note("web search for %s failed: %v", acc.ID, err)
			continue
		}
		pmid, pmcid, doi := scanSearchResults(results)
		if pmid == "" && pmcid == "" && doi == "" {
			s.note("web search for %s found nothing usable", acc.ID)
			continue
		}
		if doi != "" && s.preprint == "" {
			s.preprint = doi
			s.preprintSource = types.SourceGoogleSearch
			s.note("web search for %s surfaced preprint DOI %s", acc.ID, doi)
		}
		if pmid != "" || pmcid != "" {
			s.note("web search for %s surfaced PMID %q / PMCID %q", acc.ID, pmid, pmcid)
			// The accession itself appeared in the result, so this is not a
			// title-based match and needs no author verification.
			r.acceptSearch(ctx, s, pmid, pmcid)
		}
	}
}

// Step 6: web search by study title, verified with extra caution since
// title search has a high chance of yielding unrelated publications.
func (r *Resolver) stepTitleWebSearch(ctx context.Context, s *searchState) {
	if s.best.PMID != "" {
		return
	}
	r.ensureTitle(ctx, s)
	if s.title == "" {
		return
	}
	if !s.spend() {
		return
	}
	results, err := r.Tools.WebSearch(ctx, fmt.Sprintf("%q", s.title), r.Config.WebSearchResults)
	if err != nil {
		s.note("web search for the study title failed: %v", err)
		return
	}
	pmid, _, doi := scanSearchResults(results)
	if doi != "" && s.preprint == "" {
		s.preprint = doi
		s.preprintSource = types.SourceGoogleSearch
		s.note("title web search surfaced preprint DOI %s", doi)
	}
	if pmid == "" {
		s.note("title web search found no PubMed record")
		return
	}
	if inst := institutionForPMID(results, pmid); inst != "" {
		s.pubInstitution = inst
	}
	s.note("title web search surfaced PMID %s", pmid)
	r.verifiedAccept(ctx, s, pmid)
}

// Step 7: last resort, search the two preprint servers for the title.
func (r *Resolver) stepPreprintServers(ctx context.Context, s *searchState) {
	if !s.best.IsEmpty() || s.preprint != "" {
		return
	}
	r.ensureTitle(ctx, s)
	if s.title == "" {
		return
	}
	for _, site := range []string{"biorxiv.org", "medrxiv.org"} {
		if s.preprint != "" || !s.spend() {
			return
		}
		results, err := r.Tools.WebSearch(ctx, fmt.Sprintf("%q site:%s", s.title, site), r.Config.WebSearchResults)
		if err != nil {
			s.note("preprint search on %s failed: %v", site, err)
			continue
		}
		if _, _, doi := scanSearchResults(results); doi != "" {
			s.preprint = doi
			s.preprintSource = types.SourceGoogleSearch
			s.note("found preprint DOI %s on %s", doi, site)
		} else {
			s.note("no preprint found on %s", site)
		}
	}
}

// acceptDirect takes database-linked PMIDs, filters corrections, applies
// the multiple-publication tie-break, and records the discovery as
// authoritative. Database links bypass author verification.
func (r *Resolver) acceptDirect(ctx context.Context, s *searchState, pmids []string) {
	var pubs []types.Publication
	for _, pmid := range pmids {
		if !s.spend() {
			break
		}
		pub, err := r.Tools.PublicationDetails(ctx, pmid)
		if err != nil {
			s.note("details for PMID %s failed: %v", pmid, err)
			pubs = append(pubs, types.Publication{PMID: pmid})
			continue
		}
		if entrez.IsCorrection(pub) {
			s.note("skipping correction/erratum PMID %s (%s)", pmid, pub.Title)
			continue
		}
		pubs = append(pubs, *pub)
	}
	if len(pubs) == 0 {
		return
	}

	primary := pubs[0]
	if len(pubs) > 1 {
		primary = selectPrimary(pubs)
		s.multiple = true
		s.all = pubs
		s.note("multiple database-linked publications found; selected PMID %s as primary", primary.PMID)
	}
	s.best = primary
	s.source = types.SourceDirectLink
	if primary.Title != "" && s.title == "" {
		s.title = primary.Title
	}
	r.completePair(ctx, s)
}

// acceptSearch records a search-derived discovery. Search discoveries never
// report multiple publications.
func (r *Resolver) acceptSearch(ctx context.Context, s *searchState, pmid, pmcid string) {
	if pmid == "" && pmcid != "" {
		if !s.spend() {
			return
		}
		found, err := r.Tools.PMIDFromPMCID(ctx, pmcid)
		if err != nil {
			s.note("PMID lookup for %s failed: %v", pmcid, err)
		} else {
			pmid = found
		}
	}
	if pmid != "" {
		if !s.spend() {
			return
		}
		pub, err := r.Tools.PublicationDetails(ctx, pmid)
		if err == nil {
			if entrez.IsCorrection(pub) {
				s.note("skipping correction/erratum PMID %s (%s)", pmid, pub.Title)
				return
			}
			s.best = *pub
		} else {
			s.best = types.Publication{PMID: pmid}
		}
	}
	if pmcid != "" && s.best.PMCID == "" {
		s.best.PMCID = pmcid
	}
	s.source = types.SourceGoogleSearch
	r.completePair(ctx, s)
}

// verifiedTitleLookup searches PubMed by title and accepts only a verified
// match.
func (r *Resolver) verifiedTitleLookup(ctx context.Context, s *searchState, title string) {
	if !s.spend() {
		return
	}
	pmid, err := r.Tools.PMIDFromTitle(ctx, title)
	if err != nil {
		s.note("title search failed: %v", err)
		return
	}
	if pmid == "" {
		s.note("no PubMed record matched the title %q", title)
		return
	}
	s.note("title search matched PMID %s", pmid)
	r.verifiedAccept(ctx, s, pmid)
}

// verifiedAccept gates a title-derived candidate through the author
// verifier. A failed verification discards the candidate and the strategy
// keeps searching; an unverifiable candidate is also not accepted.
func (r *Resolver) verifiedAccept(ctx context.Context, s *searchState, pmid string) {
	if !s.spend() {
		return
	}
	pub, err := r.Tools.PublicationDetails(ctx, pmid)
	if err != nil {
		s.note("details for PMID %s failed: %v", pmid, err)
		return
	}
	if entrez.IsCorrection(pub) {
		s.note("skipping correction/erratum PMID %s (%s)", pmid, pub.Title)
		return
	}

	switch verify.Verify(pub.Authors, s.pubInstitution, s.submitters, s.center) {
	case verify.Match:
		s.note("author verification passed for PMID %s", pmid)
		s.best = *pub
		s.source = types.SourceGoogleSearch
		r.completePair(ctx, s)
	case verify.NoMatch:
		s.note("author verification rejected PMID %s; kept searching", pmid)
	default:
		s.note("could not verify authors for PMID %s (no submitter record); candidate not accepted", pmid)
	}
}

// completePair attempts the complementary cross-lookup the moment one half
// of the (PMID, PMCID) pair is known.
func (r *Resolver) completePair(ctx context.Context, s *searchState) {
	if s.best.PMID != "" && s.best.PMCID == "" {
		if !s.spend() {
			return
		}
		pmcid, err := r.Tools.PMCIDFromPMID(ctx, s.best.PMID)
		switch {
		case err != nil:
			s.note("PMCID lookup for PMID %s failed: %v", s.best.PMID, err)
		case pmcid == "":
			s.note("no PMCID exists for PMID %s", s.best.PMID)
		default:
			s.best.PMCID = pmcid
		}
	}
	if s.best.PMCID != "" && s.best.PMID == "" {
		if !s.spend() {
			return
		}
		pmid, err := r.Tools.PMIDFromPMCID(ctx, s.best.PMCID)
		switch {
		case err != nil:
			s.note("PMID lookup for %s failed: %v", s.best.PMCID, err)
		case pmid == "":
			s.note("no PMID link for %s", s.best.PMCID)
		default:
			s.best.PMID = pmid
		}
	}
}

// loadStudyContext fetches the title, center, and submitter authors used by
// the verified steps. Failures leave the context empty, which downgrades
// later verification to "unverified" rather than blocking resolution.
func (r *Resolver) loadStudyContext(ctx context.Context, s *searchState, db, uid string, acc types.Accession) {
	if s.contextLoaded && s.title != "" {
		return
	}
	if !s.spend() {
		return
	}
	if sum, err := r.Tools.StudySummary(ctx, db, uid, acc); err == nil {
		if s.title == "" {
			s.title = sum.Title
		}
		if s.center == "" {
			s.center = sum.Center
		}
	} else {
		s.note("study summary for %s failed: %v", acc.ID, err)
	}

	if !s.contextLoaded {
		if !s.spend() {
			return
		}
		if authors, err := r.Tools.SubmitterAuthors(ctx, db, uid); err == nil {
			s.submitters = authors
			s.contextLoaded = true
		} else {
			s.note("submitter authors for %s failed: %v", acc.ID, err)
		}
	}
}

// ensureTitle resolves a study title when none has been learned yet.
func (r *Resolver) ensureTitle(ctx context.Context, s *searchState) {
	if s.title != "" {
		return
	}
	for _, acc := range s.accessions {
		if acc.Kind.EntrezDB() == "" {
			continue
		}
		if !s.spend() {
			return
		}
		uid, db, err := r.Tools.UIDForAccession(ctx, acc)
		if err != nil || uid == "" {
			continue
		}
		r.loadStudyContext(ctx, s, db, uid, acc)
		if s.title != "" {
			return
		}
	}
}

// finalize assembles the immutable Result and runs the step summarizer.
func (r *Resolver) finalize(ctx context.Context, s *searchState) types.Result {
	// A preprint is only reported when no peer-reviewed record was
	// confirmed. When the preprint server says a published version exists,
	// that version is looked up and promoted to the result; the promotion
	// is one-way and supersedes the preprint DOI.
	preprint := ""
	if s.best.PMID == "" && s.best.PMCID == "" && s.preprint != "" {
		preprint = ident.NormalizeDOI(s.preprint)
		if s.spend() {
			if published, err := r.Tools.PreprintPublishedDOI(ctx, preprint); err == nil && published != "" {
				s.note("preprint %s has been published as %s", preprint, published)
				if s.spend() {
					if pmid, err := r.Tools.PMIDFromDOI(ctx, published); err == nil && pmid != "" {
						s.note("published version %s resolved to PMID %s", published, pmid)
						r.acceptSearch(ctx, s, pmid, "")
					}
				}
			}
		}
		if s.best.PMID != "" || s.best.PMCID != "" {
			preprint = ""
		} else if s.source == types.SourceUnknown {
			if s.preprintSource != "" {
				s.source = s.preprintSource
			} else {
				s.source = types.SourceGoogleSearch
			}
		}
	}

	res := types.Result{
		Publication:          s.best,
		Source:               s.source,
		MultiplePublications: s.multiple,
		AllPublications:      s.all,
	}
	res.PreprintDOI = preprint

	if s.exceeded {
		s.note("step budget of %d exhausted; returning best-known result", s.budget)
	}
	if res.IsEmpty() {
		res.Source = types.SourceNotFound
		if len(s.attempts) == 0 {
			s.note("no strategy step produced a candidate")
		}
	}
	res.Message = strings.Join(s.attempts, " | ")

	r.summarize(ctx, s)
	return res
}

func (r *Resolver) summarize(ctx context.Context, s *searchState) {
	if r.Summarizer == nil {
		return
	}
	for _, attempt := range s.attempts {
		summary, err := r.Summarizer.SummarizeStep(ctx, attempt)
		if err != nil {
			fmt.Fprintf(r.Progress, "step: %s\n", attempt)
			continue
		}
		fmt.Fprintf(r.Progress, "step: %s\n", summary)
	}
}

// Result links in web search hits that identify publications.
var (
	pubmedLinkPattern  = regexp.MustCompile(`pubmed\.ncbi\.nlm\.nih\.gov/(\d+)|ncbi\.nlm\.nih\.gov/pubmed/(\d+)`)
	pmcLinkPattern     = regexp.MustCompile(`ncbi\.nlm\.nih\.gov/pmc/articles/(PMC\d+)`)
	preprintDOIPattern = regexp.MustCompile(`10\.1101/[0-9.]+`)
)

// scanSearchResults pulls publication identifiers out of search hits:
// PubMed and PMC page links, and bioRxiv/medRxiv DOIs from links or
// snippets.
func scanSearchResults(results []websearch.Result) (pmid, pmcid, preprintDOI string) {
	for _, r := range results {
		haystack := r.Link + " " + r.Snippet
		if pmid == "" {
			if m := pubmedLinkPattern.FindStringSubmatch(r.Link); m != nil {
				if m[1] != "" {
					pmid = m[1]
				} else {
					pmid = m[2]
				}
			}
		}
		if pmcid == "" {
			if m := pmcLinkPattern.FindStringSubmatch(r.Link); m != nil {
				pmcid = m[1]
			}
		}
		if preprintDOI == "" {
			if m := preprintDOIPattern.FindString(haystack); m != "" {
				preprintDOI = ident.NormalizeDOI(m)
			}
		}
	}
	return pmid, pmcid, preprintDOI
}

// institutionForPMID pulls the citation_author_institution metatag from the
// search hit that carried the PMID, falling back to any hit exposing one.
// It feeds the candidate side of author verification.
func institutionForPMID(results []websearch.Result, pmid string) string {
	fallback := ""
	for _, r := range results {
		inst := r.Meta["citation_author_institution"]
		if inst == "" {
			continue
		}
		if strings.Contains(r.Link, pmid) {
			return inst
		}
		if fallback == "" {
			fallback = inst
		}
	}
	return fallback
}

// selectPrimary applies the ordered qualitative tie-break among several
// database-linked candidates: the more comprehensive record, then the more
// recent, then the one that describes the dataset directly rather than as
// a review or secondary analysis. No numeric score is computed.
func selectPrimary(pubs []types.Publication) types.Publication {
	best := pubs[0]
	for _, p := range pubs[1:] {
		if morePrimary(p, best) {
			best = p
		}
	}
	return best
}

func morePrimary(a, b types.Publication) bool {
	if ca, cb := comprehensiveness(a), comprehensiveness(b); ca != cb {
		return ca > cb
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return !isSecondary(a.Title) && isSecondary(b.Title)
}

// comprehensiveness counts how much of the record is filled in; a richer
// record usually corresponds to the fuller paper.
func comprehensiveness(p types.Publication) int {
	n := 0
	if p.PMCID != "" {
		n++
	}
	if len(p.Authors) > 0 {
		n++
	}
	if p.Journal != "" {
		n++
	}
	if !p.Date.IsZero() {
		n++
	}
	return n
}

func isSecondary(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range []string{"review", "meta-analysis", "commentary", "reanalysis", "secondary analysis", "perspective"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
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
