package segment

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// createRectMask returns a w×h mask with the rectangle [x0,x1)×[y0,y1) set.
func createRectMask(w, h, x0, y0, x1, y1 int) *imaging.Mask {
	m := imaging.NewMask(w, h)
	setRect(m, x0, y0, x1, y1)
	return m
}

func setRect(m *imaging.Mask, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Set(x, y, true)
		}
	}
}

// createInMemoryImage creates a solid image with optional filled rectangles.
func createInMemoryImage(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, bg)
		}
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func toRaster(t *testing.T, img image.Image) *imaging.Raster {
	t.Helper()
	r, err := imaging.NewRaster(img)
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	return r
}
