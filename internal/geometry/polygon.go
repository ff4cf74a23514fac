package geometry

import "image"

// PointInPolygon reports whether pt lies inside the closed polygon. Points on
// an edge or vertex count as inside.
func PointInPolygon(pt image.Point, polygon []image.Point) bool {
	n := len(polygon)
	if n == 0 {
		return false
	}
	if n < 3 {
		for i := 0; i < n; i++ {
			if onSegment(pt, polygon[i], polygon[(i+1)%n]) {
				return true
			}
		}
		return false
	}

	x, y := float64(pt.X), float64(pt.Y)
	inside := false

	j := n - 1
	for i := 0; i < n; i++ {
		if onSegment(pt, polygon[j], polygon[i]) {
			return true
		}
		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

func onSegment(p, a, b image.Point) bool {
	if cross(a, b, p) != 0 {
		return false
	}
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// Bounds returns the bounding rectangle of points with an exclusive max, so a
// single pixel yields a 1×1 rectangle.
func Bounds(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y

	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// BoundsCenter returns the center pixel of the points' bounding box.
func BoundsCenter(points []image.Point) image.Point {
	b := Bounds(points)
	return image.Pt(b.Min.X+(b.Dx()-1)/2, b.Min.Y+(b.Dy()-1)/2)
}
