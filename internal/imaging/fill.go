package imaging

import "image"

// Connectivity selects the neighborhood used by flood fills and component
// labeling.
type Connectivity int

const (
	Conn4 Connectivity = 4 // edge neighbors only
	Conn8 Connectivity = 8 // edge and diagonal neighbors
)

var (
	offsets4 = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	offsets8 = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

// Neighbors returns the neighbor offsets for conn.
func (c Connectivity) Neighbors() []image.Point {
	if c == Conn8 {
		return offsets8
	}
	return offsets4
}

// FloodFill returns the connected foreground blob of m that contains seed.
// The result is empty when seed is outside the grid or lands on background.
//
// Uses an explicit stack rather than recursion so large blobs cannot overflow
// the goroutine stack.
func FloodFill(m *Mask, seed image.Point, conn Connectivity) *Mask {
	out := NewMask(m.Width, m.Height)
	if !m.At(seed.X, seed.Y) {
		return out
	}

	nbrs := conn.Neighbors()
	stack := []image.Point{seed}
	out.Set(seed.X, seed.Y, true)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range nbrs {
			q := p.Add(d)
			if !m.At(q.X, q.Y) || out.At(q.X, q.Y) {
				continue
			}
			out.Set(q.X, q.Y, true)
			stack = append(stack, q)
		}
	}

	return out
}
