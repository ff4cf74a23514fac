package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// Outline is one polygon to trace on an overlay.
type Outline struct {
	Points []image.Point
	Color  RGB
	Index  int // drawn at the first vertex when labels are enabled; <=0 hides it
}

// OverlayResult contains the floor plan with region outlines drawn on top.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Regions     int    `json:"regions"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Overlay draws each outline as a closed polyline over a copy of the raster.
// When showIndex is set, each outline's Index is stamped beside its first
// vertex using a tiny built-in digit font.
func Overlay(r *Raster, outlines []Outline, showIndex bool) (*OverlayResult, error) {
	bounds := image.Rect(0, 0, r.Width(), r.Height())
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, r.Image(), image.Point{}, draw.Src)

	for _, o := range outlines {
		c := color.RGBA{R: o.Color.R, G: o.Color.G, B: o.Color.B, A: 255}
		n := len(o.Points)
		for i := 0; i < n; i++ {
			drawLine(result, o.Points[i], o.Points[(i+1)%n], c)
		}
	}

	if showIndex {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 200}
		for _, o := range outlines {
			if o.Index <= 0 || len(o.Points) == 0 {
				continue
			}
			p := o.Points[0]
			drawLabel(result, p.X+2, p.Y+2, strconv.Itoa(o.Index), labelColor, bgColor)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       r.Width(),
		Height:      r.Height(),
		Regions:     len(outlines),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// drawLine rasterizes a segment with Bresenham's algorithm, clipping per pixel.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		if image.Pt(x, y).In(img.Rect) {
			img.SetRGBA(x, y, c)
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawLabel draws a simple digit label at the given position.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// 3x5 pixel font for digits
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if p := image.Pt(x+dx, y+dy); p.In(bounds) {
				img.Set(p.X, p.Y, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if p := image.Pt(cx+col, y+row); p.In(bounds) {
					img.Set(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
