package region

import (
	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/geometry"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// DefaultEpsilonFraction is the simplification tolerance as a fraction of the
// border length.
const DefaultEpsilonFraction = 0.01

// ExtractOptions tunes polygon extraction.
type ExtractOptions struct {
	// EpsilonFraction scales the Douglas–Peucker tolerance by the closed
	// border length. Zero or negative selects DefaultEpsilonFraction.
	EpsilonFraction float64
}

func (o ExtractOptions) epsilon(border float64) float64 {
	f := o.EpsilonFraction
	if f <= 0 {
		f = DefaultEpsilonFraction
	}
	return f * border
}

// Extract derives a Region from the largest 8-connected component of m.
// Smaller components are discarded.
//
// An empty mask or a polygon that collapses below three vertices is not an
// error: the region is nil and a warning explains why.
func Extract(m *imaging.Mask, opts ExtractOptions) (*Region, []diag.Warning, error) {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return nil, nil, diag.Inputf("extract", "empty mask grid")
	}
	c, ok := geometry.LargestContour(m)
	if !ok {
		return nil, []diag.Warning{diag.Warn(diag.EmptyMask, "", "mask has no foreground pixels")}, nil
	}
	r, warnings := FromContour(c, opts)
	return r, warnings, nil
}

// FromContour builds a Region from an already traced border.
func FromContour(c geometry.Contour, opts ExtractOptions) (*Region, []diag.Warning) {
	var warnings []diag.Warning

	eps := opts.epsilon(geometry.ArcLength(c.Points, true))
	poly := geometry.Simplify(c.Points, eps)
	if len(poly) < 3 {
		warnings = append(warnings, diag.Warn(diag.DegenerateGeometry, "",
			"polygon at (%d,%d) has %d vertices after simplification", c.Bounds.Min.X, c.Bounds.Min.Y, len(poly)))
		return nil, warnings
	}

	centroid, fallback := geometry.Centroid(c.Points)
	if fallback {
		warnings = append(warnings, diag.Warn(diag.DegenerateGeometry, "",
			"border at (%d,%d) encloses zero area, using bounding-box center", c.Bounds.Min.X, c.Bounds.Min.Y))
	}

	return &Region{
		Polygon:  poly,
		Centroid: centroid,
		BBox:     BBoxFromRect(c.Bounds),
		Area:     c.Area,
	}, warnings
}
