package segment

import (
	"fmt"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// RankOptions configures candidate refinement and diagnostic flags.
type RankOptions struct {
	Refine RefineOptions

	// WholeImageFraction flags masks covering more than this share of the
	// image.
	WholeImageFraction float64

	// SmallFraction flags masks covering less than this share of the image.
	SmallFraction float64
}

// DefaultRankOptions flags masks over 80% or under 1% of the image.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		Refine:             DefaultRefineOptions(),
		WholeImageFraction: 0.8,
		SmallFraction:      0.01,
	}
}

// RankedCandidate is one refined oracle candidate.
type RankedCandidate struct {
	Index      int
	Mask       *imaging.Mask
	Score      float64
	Area       int
	Refinement RefineResult

	// Diagnostic flags; none of them affect selection.
	WholeImage bool
	Small      bool
	Empty      bool
}

// Flags lists the diagnostic flags that are set.
func (c RankedCandidate) Flags() []string {
	var flags []string
	if c.Empty {
		flags = append(flags, string(diag.EmptyMask))
	}
	if c.WholeImage {
		flags = append(flags, string(diag.WholeImageMask))
	}
	if c.Small {
		flags = append(flags, string(diag.SmallMask))
	}
	if c.Refinement.Reverted {
		flags = append(flags, string(diag.RefinementReverted))
	}
	return flags
}

// Ranking is the result of ranking one query's candidates.
type Ranking struct {
	Candidates []RankedCandidate
	Best       int // index into Candidates
	Warnings   []diag.Warning
}

// BestCandidate returns the selected candidate.
func (r *Ranking) BestCandidate() RankedCandidate {
	return r.Candidates[r.Best]
}

// Rank refines every candidate and selects the one with the highest score.
// Ties go to the earlier candidate. Flags are computed on the refined area and
// reported as warnings, but selection ignores them.
func Rank(cands Candidates, width, height int, opts RankOptions) (*Ranking, error) {
	if len(cands) == 0 {
		return nil, diag.Inputf("rank", "no candidates")
	}
	for i, c := range cands {
		if c.Mask == nil || !c.Mask.SameShape(width, height) {
			return nil, diag.Inputf("rank", "candidate %d does not match %dx%d image", i, width, height)
		}
	}

	total := float64(width * height)
	out := &Ranking{Candidates: make([]RankedCandidate, len(cands))}

	for i, c := range cands {
		ref := RefineWith(c.Mask, opts.Refine)
		rc := RankedCandidate{
			Index:      i,
			Mask:       ref.Mask,
			Score:      c.Score,
			Area:       ref.Area,
			Refinement: ref,
			Empty:      ref.Area == 0,
		}
		rc.WholeImage = opts.WholeImageFraction > 0 && float64(rc.Area) > opts.WholeImageFraction*total
		rc.Small = !rc.Empty && float64(rc.Area) < opts.SmallFraction*total
		out.Candidates[i] = rc

		subject := fmt.Sprintf("mask_%d", i)
		if rc.Empty {
			out.Warnings = append(out.Warnings, diag.Warn(diag.EmptyMask, subject, "mask has no foreground pixels"))
		}
		if rc.WholeImage {
			out.Warnings = append(out.Warnings, diag.Warn(diag.WholeImageMask, subject,
				"area %d covers %.0f%% of the image", rc.Area, 100*float64(rc.Area)/total))
		}
		if rc.Small {
			out.Warnings = append(out.Warnings, diag.Warn(diag.SmallMask, subject,
				"area %d is under %.1f%% of the image", rc.Area, 100*opts.SmallFraction))
		}
		if ref.Reverted {
			out.Warnings = append(out.Warnings, diag.Warn(diag.RefinementReverted, subject,
				"opening changed area beyond bounds, kept original %d", ref.OriginalArea))
		}

		if rc.Score > out.Candidates[out.Best].Score {
			out.Best = i
		}
	}

	return out, nil
}
