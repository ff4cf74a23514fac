package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
)

// Mask is a binary membership grid the same size as its source raster.
// true marks a pixel that belongs to the region.
type Mask struct {
	Width  int
	Height int
	Pix    []bool // row-major, len == Width*Height
}

// NewMask allocates an empty mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// MaskFromRows converts a 0/255 (or any zero/non-zero) row grid to a mask.
// Rows shorter than the first row are padded with false.
func MaskFromRows(rows [][]uint8) *Mask {
	if len(rows) == 0 {
		return NewMask(0, 0)
	}
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x := 0; x < m.Width && x < len(row); x++ {
			m.Pix[y*m.Width+x] = row[x] > 0
		}
	}
	return m
}

// MaskFromImage binarizes an arbitrary image: any pixel whose luminance is
// above zero becomes foreground. Oracle masks arrive as 0/255 grayscale PNGs.
func MaskFromImage(img image.Image) *Mask {
	gray := segment.Threshold(img, 1)
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Pix[y*m.Width+x] = gray.GrayAt(x+b.Min.X, y+b.Min.Y).Y > 0
		}
	}
	return m
}

// In reports whether (x, y) lies inside the mask grid.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At reports membership at (x, y); out-of-grid coordinates are false.
func (m *Mask) At(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set changes membership at (x, y). Out-of-grid writes are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if m.In(x, y) {
		m.Pix[y*m.Width+x] = v
	}
}

// Area counts foreground pixels.
func (m *Mask) Area() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no foreground pixels.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Equal reports whether two masks have the same shape and membership.
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// SameShape reports whether the mask matches a width × height grid.
func (m *Mask) SameShape(width, height int) bool {
	return m.Width == width && m.Height == height
}

// Bounds returns the tight bounding rectangle of the foreground
// (exclusive max), or an empty rectangle for an empty mask.
func (m *Mask) Bounds() image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if !v {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Centroid returns the mean foreground coordinate, rounded to the nearest
// pixel. ok is false for an empty mask.
func (m *Mask) Centroid() (x, y int, ok bool) {
	var sumX, sumY, n int
	for py := 0; py < m.Height; py++ {
		for px := 0; px < m.Width; px++ {
			if m.Pix[py*m.Width+px] {
				sumX += px
				sumY += py
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return roundDiv(sumX, n), roundDiv(sumY, n), true
}

// Rows renders the mask as 0/255 rows, the wire shape of the prediction API.
func (m *Mask) Rows() [][]int {
	rows := make([][]int, m.Height)
	for y := range rows {
		row := make([]int, m.Width)
		for x := range row {
			if m.Pix[y*m.Width+x] {
				row[x] = 255
			}
		}
		rows[y] = row
	}
	return rows
}

// ToGray renders the mask as a 0/255 grayscale image.
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			g.Pix[(i/m.Width)*g.Stride+i%m.Width] = 255
		}
	}
	return g
}

func roundDiv(a, b int) int {
	return (2*a + b) / (2 * b)
}
