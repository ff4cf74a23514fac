package geometry

import (
	"image"
	"sort"
)

// ConvexHull returns the convex hull of points in counter-clockwise screen
// order (Andrew's monotone chain). Collinear boundary points are dropped.
func ConvexHull(points []image.Point) []image.Point {
	pts := append([]image.Point(nil), points...)
	if len(pts) < 3 {
		return pts
	}

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// Solidity is the ratio of the polygon's area to its convex hull's area, or 0
// when the hull is degenerate.
func Solidity(points []image.Point) float64 {
	hullArea := PolygonArea(ConvexHull(points))
	if hullArea == 0 {
		return 0
	}
	return PolygonArea(points) / hullArea
}

func cross(o, a, b image.Point) int64 {
	return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
}
