package segment

import (
	"image"

	"github.com/ironsheep/floorplan-mcp/internal/geometry"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// Prompt is one labeled click sent to the oracle.
type Prompt struct {
	Point    image.Point
	Positive bool
}

// Label returns the oracle's numeric label: 1 for positive, 0 for negative.
func (p Prompt) Label() int {
	if p.Positive {
		return 1
	}
	return 0
}

// EnhanceOptions tunes prompt enhancement.
type EnhanceOptions struct {
	MaxGuidancePoints int // per positive seed
	Tolerance         int // per-channel color tolerance around the seed color
	Kernel            int // closing/opening element size
}

// DefaultEnhanceOptions adds up to four guidance points per click from a
// ±30 color neighborhood cleaned with a 5×5 element.
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{MaxGuidancePoints: 4, Tolerance: 30, Kernel: 5}
}

// EnhancePrompts expands every positive prompt into the prompt itself plus
// guidance points sampled from the border of the flat-colored blob it lands
// in. Negative prompts, prompts outside the raster and prompts whose blob is
// empty are passed through unchanged. Order is preserved.
func EnhancePrompts(r *imaging.Raster, prompts []Prompt, opts EnhanceOptions) []Prompt {
	if opts.MaxGuidancePoints <= 0 {
		return append([]Prompt(nil), prompts...)
	}
	out := make([]Prompt, 0, len(prompts)*(opts.MaxGuidancePoints+1))
	for _, p := range prompts {
		out = append(out, p)
		if !p.Positive || !r.In(p.Point.X, p.Point.Y) {
			continue
		}
		for _, g := range GuidancePoints(r, p.Point, opts) {
			out = append(out, Prompt{Point: g, Positive: true})
		}
	}
	return out
}

// GuidancePoints samples up to opts.MaxGuidancePoints points on the border of
// the similar-color blob containing seed. It returns nil when the seed is
// outside the raster or the blob is empty.
func GuidancePoints(r *imaging.Raster, seed image.Point, opts EnhanceOptions) []image.Point {
	if !r.In(seed.X, seed.Y) {
		return nil
	}

	similar := imaging.InRange(r, imaging.RangeAround(r.At(seed.X, seed.Y), opts.Tolerance))
	similar = imaging.Open(imaging.Close(similar, opts.Kernel), opts.Kernel)
	blob := imaging.FloodFill(similar, seed, imaging.Conn8)
	if blob.Empty() {
		return nil
	}

	contours := geometry.ExternalContours(blob)
	if len(contours) == 0 {
		return nil
	}
	target := -1
	for i, c := range contours {
		if geometry.PointInPolygon(seed, c.Points) {
			target = i
			break
		}
	}
	if target < 0 {
		target = 0
		for i, c := range contours {
			if c.Area > contours[target].Area {
				target = i
			}
		}
	}

	return SampleBoundary(geometry.CompressChain(contours[target].Points), opts.MaxGuidancePoints)
}

// SampleBoundary picks n points from an ordered border at a fixed index
// stride of len(points)/n, starting at index 0. Borders with fewer than n
// points are returned whole.
func SampleBoundary(points []image.Point, n int) []image.Point {
	if n <= 0 || len(points) == 0 {
		return nil
	}
	if len(points) < n {
		return append([]image.Point(nil), points...)
	}
	step := len(points) / n
	out := make([]image.Point, 0, n)
	for i := 0; i < len(points) && len(out) < n; i += step {
		out = append(out, points[i])
	}
	return out
}
