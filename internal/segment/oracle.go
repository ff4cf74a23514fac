package segment

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// Query is one request to the segmentation oracle.
type Query struct {
	Image     *imaging.Raster
	Prompts   []Prompt
	Boxes     []image.Rectangle
	MultiMask bool
}

// Candidate is one mask proposed by the oracle with its confidence in [0,1].
type Candidate struct {
	Mask  *imaging.Mask
	Score float64
}

// Candidates is the oracle's ordered answer to one query.
type Candidates []Candidate

// Oracle is the external segmentation model.
//
// Implementations return either candidates or an error, never both. The
// pipeline does not retry and never substitutes a default mask.
type Oracle interface {
	Predict(ctx context.Context, q Query) (Candidates, error)
}

// ValidateCandidates checks that the oracle answered with at least one
// candidate, every mask matches the width × height raster, and every score is
// a number in [0,1]. Violations are reported as diag.OracleError.
func ValidateCandidates(cands Candidates, width, height int) error {
	if len(cands) == 0 {
		return diag.Oraclef("no candidates returned")
	}
	for i, c := range cands {
		if c.Mask == nil {
			return diag.Oraclef("candidate %d has no mask", i)
		}
		if !c.Mask.SameShape(width, height) {
			return diag.Oraclef("candidate %d mask is %dx%d, image is %dx%d",
				i, c.Mask.Width, c.Mask.Height, width, height)
		}
		if math.IsNaN(c.Score) || c.Score < 0 || c.Score > 1 {
			return diag.Oraclef("candidate %d score %v outside [0,1]", i, c.Score)
		}
	}
	return nil
}
