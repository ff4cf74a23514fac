package geometry

import (
	"image"

	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// Contour is the traced outer border of one connected component.
type Contour struct {
	// Points is the ordered border pixel chain, implicitly closed.
	Points []image.Point

	// Area is the filled pixel count: the component plus any holes it encloses.
	Area int

	// Pixels is the number of foreground pixels in the component itself.
	Pixels int

	// Bounds is the component's bounding rectangle (exclusive max).
	Bounds image.Rectangle
}

// Border-following directions in clockwise screen order, starting east.
var dirs = [8]image.Point{
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
}

const dirWest = 4

// ExternalContours returns the outer border of every 8-connected component of
// m that does not sit inside a hole of another component. Contours are ordered
// by the raster position of each component's first pixel.
func ExternalContours(m *imaging.Mask) []Contour {
	labels, comps := labelComponents(m)
	if len(comps) == 0 {
		return nil
	}
	exterior := exteriorBackground(m)

	var out []Contour
	for id, c := range comps {
		left := c.start.Add(image.Pt(-1, 0))
		if left.X >= 0 && !exterior[left.Y*m.Width+left.X] {
			continue // nested in another component's hole
		}
		out = append(out, Contour{
			Points: traceBorder(labels, m.Width, m.Height, int32(id+1), c.start),
			Area:   filledArea(labels, m.Width, int32(id+1), c.bounds),
			Pixels: c.pixels,
			Bounds: c.bounds,
		})
	}
	return out
}

// LargestContour returns the external contour with the greatest filled area.
// Ties go to the component that starts first in raster order. ok is false for
// an empty mask.
func LargestContour(m *imaging.Mask) (Contour, bool) {
	contours := ExternalContours(m)
	if len(contours) == 0 {
		return Contour{}, false
	}
	best := 0
	for i := 1; i < len(contours); i++ {
		if contours[i].Area > contours[best].Area {
			best = i
		}
	}
	return contours[best], true
}

type component struct {
	start  image.Point
	pixels int
	bounds image.Rectangle
}

// labelComponents assigns each foreground pixel a 1-based 8-connected
// component id, numbered in raster order of first appearance.
func labelComponents(m *imaging.Mask) ([]int32, []component) {
	w, h := m.Width, m.Height
	labels := make([]int32, w*h)
	var comps []component
	var queue []image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.Pix[y*w+x] || labels[y*w+x] != 0 {
				continue
			}
			id := int32(len(comps) + 1)
			c := component{start: image.Pt(x, y), bounds: image.Rect(x, y, x+1, y+1)}
			labels[y*w+x] = id
			queue = append(queue[:0], image.Pt(x, y))

			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				c.pixels++
				c.bounds = c.bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for _, d := range dirs {
					q := p.Add(d)
					if !m.At(q.X, q.Y) || labels[q.Y*w+q.X] != 0 {
						continue
					}
					labels[q.Y*w+q.X] = id
					queue = append(queue, q)
				}
			}
			comps = append(comps, c)
		}
	}
	return labels, comps
}

// exteriorBackground marks background pixels 4-connected to the image border.
func exteriorBackground(m *imaging.Mask) []bool {
	w, h := m.Width, m.Height
	seen := make([]bool, w*h)
	var stack []image.Point

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if seen[i] || m.Pix[i] {
			return
		}
		seen[i] = true
		stack = append(stack, image.Pt(x, y))
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return seen
}

// traceBorder follows the outer border of component id from its first raster
// pixel p0, whose west neighbor is background.
func traceBorder(labels []int32, w, h int, id int32, p0 image.Point) []image.Point {
	fg := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == id
	}

	// Find the first foreground neighbor clockwise from west.
	first := -1
	for k := 0; k < 8; k++ {
		d := (dirWest + k) % 8
		if fg(p0.Add(dirs[d])) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{p0}
	}

	p1 := p0.Add(dirs[first])
	prev, cur := p1, p0
	var chain []image.Point

	for {
		// Search counterclockwise around cur, starting just past prev.
		back := dirIndex(prev.Sub(cur))
		var next image.Point
		for k := 1; k <= 8; k++ {
			d := (back - k + 16) % 8
			if q := cur.Add(dirs[d]); fg(q) {
				next = q
				break
			}
		}
		chain = append(chain, cur)
		if next == p0 && cur == p1 {
			return chain
		}
		prev, cur = cur, next
	}
}

func dirIndex(d image.Point) int {
	for i, v := range dirs {
		if v == d {
			return i
		}
	}
	return 0
}

// filledArea counts the pixels of bounds that are not reachable from outside
// the component without crossing it: the component plus its holes.
func filledArea(labels []int32, w int, id int32, bounds image.Rectangle) int {
	// Work on bounds grown by one so the outside is connected around it.
	pad := bounds.Inset(-1)
	pw, ph := pad.Dx(), pad.Dy()
	seen := make([]bool, pw*ph)

	inComp := func(x, y int) bool {
		if !image.Pt(x, y).In(bounds) {
			return false
		}
		return labels[y*w+x] == id
	}

	stack := []image.Point{pad.Min}
	seen[0] = true
	outside := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		outside++
		for _, d := range imaging.Conn4.Neighbors() {
			q := p.Add(d)
			if !q.In(pad) {
				continue
			}
			i := (q.Y-pad.Min.Y)*pw + (q.X - pad.Min.X)
			if seen[i] || inComp(q.X, q.Y) {
				continue
			}
			seen[i] = true
			stack = append(stack, q)
		}
	}
	return pw*ph - outside
}
