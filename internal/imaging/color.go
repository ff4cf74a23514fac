package imaging

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
)

// RGB represents an RGB color with 8-bit components.
type RGB struct {
	R uint8 `json:"r" yaml:"r"` // Red component (0-255)
	G uint8 `json:"g" yaml:"g"` // Green component (0-255)
	B uint8 `json:"b" yaml:"b"` // Blue component (0-255)
}

// Hex formats the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses "#RRGGBB" (or the short "#RGB" form) into an RGB triple.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, diag.Inputf("color", "invalid hex color %q", s)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a sampled color in the representations used when
// authoring color ranges for a floor plan.
type ColorResult struct {
	X   int      `json:"x"`
	Y   int      `json:"y"`
	Hex string   `json:"hex"`
	RGB RGB      `json:"rgb"`
	HSL HSLColor `json:"hsl"`
}

// SampleColor returns the color at (x, y).
func SampleColor(r *Raster, x, y int) (*ColorResult, error) {
	if !r.In(x, y) {
		return nil, diag.Inputf("sample", "coordinates (%d,%d) outside image bounds %dx%d", x, y, r.Width(), r.Height())
	}

	c := r.At(x, y)
	h, s, l := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	return &ColorResult{
		X:   x,
		Y:   y,
		Hex: c.Hex(),
		RGB: c,
		HSL: HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}, nil
}

// ColorRange is an inclusive per-channel RGB interval defining a color
// membership predicate.
type ColorRange struct {
	Lower RGB `json:"lower" yaml:"lower"`
	Upper RGB `json:"upper" yaml:"upper"`
}

// NewColorRange validates that lower ≤ upper on every channel.
func NewColorRange(lower, upper RGB) (ColorRange, error) {
	if lower.R > upper.R || lower.G > upper.G || lower.B > upper.B {
		return ColorRange{}, diag.Inputf("color range", "lower %v exceeds upper %v", lower, upper)
	}
	return ColorRange{Lower: lower, Upper: upper}, nil
}

// RangeAround builds [c − tol, c + tol] per channel, clipped to [0, 255].
func RangeAround(c RGB, tol int) ColorRange {
	if tol < 0 {
		tol = 0
	}
	lo := func(v uint8) uint8 { return uint8(clamp(int(v)-tol, 0, 255)) }
	hi := func(v uint8) uint8 { return uint8(clamp(int(v)+tol, 0, 255)) }
	return ColorRange{
		Lower: RGB{R: lo(c.R), G: lo(c.G), B: lo(c.B)},
		Upper: RGB{R: hi(c.R), G: hi(c.G), B: hi(c.B)},
	}
}

// Contains reports whether c lies inside the range (bounds inclusive).
func (cr ColorRange) Contains(c RGB) bool {
	return c.R >= cr.Lower.R && c.R <= cr.Upper.R &&
		c.G >= cr.Lower.G && c.G <= cr.Upper.G &&
		c.B >= cr.Lower.B && c.B <= cr.Upper.B
}

// InRange builds the membership mask of every pixel whose color lies in cr.
func InRange(r *Raster, cr ColorRange) *Mask {
	m := NewMask(r.Width(), r.Height())
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			if cr.Contains(r.At(x, y)) {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
