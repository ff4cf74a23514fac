package geometry

import (
	"image"

	"gonum.org/v1/gonum/spatial/r2"
)

// CompressChain drops every point of a closed pixel chain whose incoming and
// outgoing steps are identical, leaving only the endpoints of horizontal,
// vertical and diagonal runs.
func CompressChain(points []image.Point) []image.Point {
	n := len(points)
	if n < 3 {
		return append([]image.Point(nil), points...)
	}
	out := make([]image.Point, 0, n)
	for i, p := range points {
		in := p.Sub(points[(i-1+n)%n])
		next := points[(i+1)%n].Sub(p)
		if in != next {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]image.Point(nil), points...)
	}
	return out
}

// ArcLength returns the length of the polyline through points. When closed is
// set the segment from the last point back to the first is included.
func ArcLength(points []image.Point, closed bool) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < n; i++ {
		total += Distance(points[i-1], points[i])
	}
	if closed {
		total += Distance(points[n-1], points[0])
	}
	return total
}

// Distance is the Euclidean distance between two pixels.
func Distance(a, b image.Point) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

func vec(p image.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}
