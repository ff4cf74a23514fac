package geometry

import (
	"image"
	"math"
)

// Moments holds the zeroth and first area moments of a closed polygon.
type Moments struct {
	M00 float64 // enclosed area, signed by orientation
	M10 float64
	M01 float64
}

// PolygonMoments computes area moments of the closed polygon through points
// using Green's theorem over its edges.
func PolygonMoments(points []image.Point) Moments {
	var m Moments
	n := len(points)
	for i := 0; i < n; i++ {
		p, q := points[i], points[(i+1)%n]
		xi, yi := float64(p.X), float64(p.Y)
		xj, yj := float64(q.X), float64(q.Y)
		a := xi*yj - xj*yi
		m.M00 += a
		m.M10 += (xi + xj) * a
		m.M01 += (yi + yj) * a
	}
	m.M00 /= 2
	m.M10 /= 6
	m.M01 /= 6
	return m
}

// Centroid returns (M10/M00, M01/M00) rounded to the nearest pixel. ok is
// false when the polygon encloses no area.
func (m Moments) Centroid() (image.Point, bool) {
	if math.Abs(m.M00) < 1e-9 {
		return image.Point{}, false
	}
	return image.Pt(
		int(math.Round(m.M10/m.M00)),
		int(math.Round(m.M01/m.M00)),
	), true
}

// Centroid returns the area centroid of points, falling back to the center of
// their bounding box when they enclose zero area. fallback reports which one
// was used.
func Centroid(points []image.Point) (c image.Point, fallback bool) {
	if c, ok := PolygonMoments(points).Centroid(); ok {
		return c, false
	}
	return BoundsCenter(points), true
}

// PolygonArea returns the unsigned shoelace area of the closed polygon.
func PolygonArea(points []image.Point) float64 {
	return math.Abs(PolygonMoments(points).M00)
}
