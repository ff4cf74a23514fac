package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simplify reduces a closed chain with Douglas–Peucker. Points within epsilon
// of the chord between kept neighbors are dropped.
//
// A closed chain has no natural endpoints, so it is split at its first point
// and the point farthest from it, and each half is simplified as an open path.
func Simplify(points []image.Point, epsilon float64) []image.Point {
	n := len(points)
	if n <= 2 {
		return append([]image.Point(nil), points...)
	}

	far, farDist := 0, 0.0
	for i := 1; i < n; i++ {
		if d := Distance(points[0], points[i]); d > farDist {
			far, farDist = i, d
		}
	}
	if farDist == 0 {
		return []image.Point{points[0]}
	}

	first := simplifyPath(points[:far+1], epsilon)

	rest := make([]image.Point, 0, n-far+1)
	rest = append(rest, points[far:]...)
	rest = append(rest, points[0])
	second := simplifyPath(rest, epsilon)

	out := make([]image.Point, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	return out
}

// SimplifyOpen runs Douglas–Peucker on an open path, keeping both endpoints.
func SimplifyOpen(points []image.Point, epsilon float64) []image.Point {
	if len(points) <= 2 {
		return append([]image.Point(nil), points...)
	}
	return simplifyPath(points, epsilon)
}

func simplifyPath(path []image.Point, epsilon float64) []image.Point {
	if len(path) <= 2 {
		return append([]image.Point(nil), path...)
	}

	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)

		result := make([]image.Point, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []image.Point{path[0], path[end]}
}

// perpendicularDistance is the distance from p to the line through a and b,
// or to a itself when a and b coincide.
func perpendicularDistance(p, a, b image.Point) float64 {
	ab := r2.Sub(vec(b), vec(a))
	ap := r2.Sub(vec(p), vec(a))
	den := r2.Norm(ab)
	if den == 0 {
		return r2.Norm(ap)
	}
	return math.Abs(r2.Cross(ab, ap)) / den
}
