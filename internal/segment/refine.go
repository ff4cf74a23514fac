package segment

import "github.com/ironsheep/floorplan-mcp/internal/imaging"

// RefineOptions bounds mask denoising.
type RefineOptions struct {
	// SkipArea: masks with area at or below this are returned unchanged.
	SkipArea int

	// Kernel is the opening element size.
	Kernel int

	// MinRatio and MaxRatio bound refinedArea/originalArea for the
	// refinement to be kept.
	MinRatio float64
	MaxRatio float64
}

// DefaultRefineOptions skips masks of 100 pixels or less and accepts a 2×2
// opening only if it moves the area by at most 20%.
func DefaultRefineOptions() RefineOptions {
	return RefineOptions{SkipArea: 100, Kernel: 2, MinRatio: 0.8, MaxRatio: 1.2}
}

// RefineResult is the outcome of one refinement.
type RefineResult struct {
	Mask         *imaging.Mask
	Area         int
	OriginalArea int
	Skipped      bool // too small to denoise
	Reverted     bool // opening drifted the area out of bounds
}

// Refine denoises m with DefaultRefineOptions.
func Refine(m *imaging.Mask) RefineResult {
	return RefineWith(m, DefaultRefineOptions())
}

// RefineWith removes isolated noise from m with a single opening, and keeps
// the result only if its area stays within [MinRatio, MaxRatio] of the
// original. Otherwise m is returned unchanged. The input is never modified.
func RefineWith(m *imaging.Mask, opts RefineOptions) RefineResult {
	area := m.Area()
	res := RefineResult{Mask: m, Area: area, OriginalArea: area}
	if area <= opts.SkipArea {
		res.Skipped = true
		return res
	}

	opened := imaging.Open(m, opts.Kernel)
	refined := opened.Area()
	lo := opts.MinRatio * float64(area)
	hi := opts.MaxRatio * float64(area)
	if float64(refined) < lo || float64(refined) > hi {
		res.Reverted = true
		return res
	}

	res.Mask = opened
	res.Area = refined
	return res
}
