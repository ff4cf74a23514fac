package detection

import (
	"github.com/ironsheep/floorplan-mcp/internal/geometry"
)

// ShapeFilter decides whether a contour is plausibly a store footprint rather
// than a corridor, label band or icon that happens to share the fill color.
type ShapeFilter struct {
	// MaxAspect is the exclusive upper bound on max(w,h)/min(w,h).
	MaxAspect float64

	// MinSolidity is the exclusive lower bound on contour area over convex
	// hull area.
	MinSolidity float64

	// MinSide is the exclusive lower bound on both bounding-box sides.
	MinSide int
}

// DefaultStoreShape rejects slivers, ragged outlines and icons.
var DefaultStoreShape = ShapeFilter{MaxAspect: 4, MinSolidity: 0.6, MinSide: 30}

// ShapeStats are the measurements ShapeFilter tests.
type ShapeStats struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Aspect   float64 `json:"aspect"`
	Solidity float64 `json:"solidity"`
}

// MeasureShape computes the shape statistics of a traced contour.
func MeasureShape(c geometry.Contour) ShapeStats {
	w, h := c.Bounds.Dx(), c.Bounds.Dy()
	s := ShapeStats{Width: w, Height: h, Solidity: geometry.Solidity(c.Points)}
	lo, hi := min(w, h), max(w, h)
	if lo > 0 {
		s.Aspect = float64(hi) / float64(lo)
	}
	return s
}

// Accept reports whether c passes every threshold.
func (f ShapeFilter) Accept(c geometry.Contour) bool {
	s := MeasureShape(c)
	return s.Aspect > 0 && s.Aspect < f.MaxAspect &&
		s.Solidity > f.MinSolidity &&
		s.Width > f.MinSide && s.Height > f.MinSide
}
