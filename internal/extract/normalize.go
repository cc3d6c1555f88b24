// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"

	"github.com/maarten-devries/SRAgent/internal/ident"
	"github.com/maarten-devries/SRAgent/pkg/types"
)

// CrossLookup is the archive-id to primary-id lookup used to back-fill a
// missing PMID.
type CrossLookup interface {
	PMIDFromPMCID(ctx context.Context, pmcid string) (string, error)
}

// Normalize finalizes an extracted result: identifier formats are
// canonicalized, a missing PMID is back-filled from the PMCID via the
// cross-lookup (with a note appended to the message; lookup failures are
// logged, never fatal), and a confirmed PMID clears any preprint DOI, since
// a peer-reviewed match supersedes treating the study as preprint-only.
func Normalize(ctx context.Context, res types.Result, xlook CrossLookup, log io.Writer) types.Result {
	res.PMID = ident.NormalizePMID(res.PMID)
	res.PMCID = ident.NormalizePMCID(res.PMCID)
	res.PreprintDOI = ident.NormalizeDOI(res.PreprintDOI)

	if res.PMCID != "" && res.PMID == "" && xlook != nil {
		pmid, err := xlook.PMIDFromPMCID(ctx, res.PMCID)
		switch {
		case err != nil:
			if log != nil {
				fmt.Fprintf(log, "warning: PMID lookup for %s failed: %v\n", res.PMCID, err)
			}
		case pmid == "":
			if log != nil {
				fmt.Fprintf(log, "warning: no PMID found for %s\n", res.PMCID)
			}
		default:
			res.PMID = pmid
			res.Message += fmt.Sprintf(" PMID: %s was automatically retrieved from PMCID: %s.", pmid, res.PMCID)
		}
	}

	if res.PMID != "" {
		res.PreprintDOI = ""
	}

	if res.IsEmpty() && res.Source == types.SourceUnknown {
		res.Source = types.SourceNotFound
	}
	return res
}
