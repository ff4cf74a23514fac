package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-mcp/internal/region"
)

var (
	pinkFill  = color.RGBA{225, 207, 217, 255}
	blueFill  = color.RGBA{195, 215, 235, 255}
	pinkRange = imaging.ColorRange{Lower: imaging.RGB{R: 210, G: 190, B: 200}, Upper: imaging.RGB{R: 240, G: 220, B: 235}}
	blueRange = imaging.ColorRange{Lower: imaging.RGB{R: 180, G: 200, B: 220}, Upper: imaging.RGB{R: 210, G: 230, B: 250}}
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect paints the rectangle with top-left (x, y) and the given size.
func fillRect(img *image.RGBA, x, y, w, h int, c color.Color) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			img.Set(px, py, c)
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

func pinkSpec() ColorSpec {
	return ColorSpec{Category: "レディスファッション", Color: "#FFB6C1", Range: pinkRange}
}

func blueSpec() ColorSpec {
	return ColorSpec{Category: "インテリア・生活雑貨", Color: "#ADD8E6", Range: blueRange}
}

func TestDetectColorRegions_SingleStore(t *testing.T) {
	img := createTestImage(610, 929, color.White)
	fillRect(img, 248, 95, 124, 107, pinkFill)

	result, err := DetectColorRegions(toRaster(t, img), []ColorSpec{pinkSpec()}, DefaultDetectOptions())
	if err != nil {
		t.Fatalf("DetectColorRegions failed: %v", err)
	}

	if len(result.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(result.Regions))
	}
	r := result.Regions[0]

	if want := (region.BBox{X: 248, Y: 95, Width: 124, Height: 107}); r.BBox != want {
		t.Errorf("bbox: got %+v, want %+v", r.BBox, want)
	}
	if r.Area != 13268 {
		t.Errorf("area: got %d, want 13268", r.Area)
	}
	if want := image.Pt(310, 148); r.Centroid != want {
		t.Errorf("centroid: got %v, want %v", r.Centroid, want)
	}
	if r.Category != "レディスファッション" || r.Color != "#FFB6C1" {
		t.Errorf("tags: got %q %q", r.Category, r.Color)
	}
	if r.ID != "store_1" {
		t.Errorf("id: got %q, want store_1", r.ID)
	}
}

func TestDetectColorRegions_MultipleRangesSortedByArea(t *testing.T) {
	img := createTestImage(610, 929, color.White)
	fillRect(img, 20, 20, 60, 60, pinkFill)    // 3600
	fillRect(img, 300, 300, 150, 100, blueFill) // 15000
	fillRect(img, 20, 500, 100, 80, pinkFill)   // 8000

	result, err := DetectColorRegions(toRaster(t, img), []ColorSpec{pinkSpec(), blueSpec()}, DefaultDetectOptions())
	if err != nil {
		t.Fatalf("DetectColorRegions failed: %v", err)
	}

	wantAreas := []int{15000, 8000, 3600}
	if len(result.Regions) != len(wantAreas) {
		t.Fatalf("got %d regions, want %d", len(result.Regions), len(wantAreas))
	}
	for i, want := range wantAreas {
		if result.Regions[i].Area != want {
			t.Errorf("region %d area: got %d, want %d", i, result.Regions[i].Area, want)
		}
	}
	if result.Regions[0].Category != "インテリア・生活雑貨" {
		t.Errorf("largest region category: got %q", result.Regions[0].Category)
	}

	if len(result.Stats) != 2 || result.Stats[0].Regions != 2 || result.Stats[1].Regions != 1 {
		t.Errorf("stats: got %+v", result.Stats)
	}
}

func TestDetectColorRegions_Deterministic(t *testing.T) {
	img := createTestImage(400, 400, color.White)
	// Equal areas in both ranges exercise the tie order.
	fillRect(img, 10, 10, 50, 50, pinkFill)
	fillRect(img, 100, 10, 50, 50, blueFill)
	fillRect(img, 200, 200, 50, 50, pinkFill)
	fillRect(img, 10, 300, 70, 40, blueFill)
	r := toRaster(t, img)
	specs := []ColorSpec{pinkSpec(), blueSpec()}
	opts := DetectOptions{MinArea: 100}

	first, err := DetectColorRegions(r, specs, opts)
	if err != nil {
		t.Fatalf("DetectColorRegions failed: %v", err)
	}
	for run := 0; run < 5; run++ {
		again, err := DetectColorRegions(r, specs, opts)
		if err != nil {
			t.Fatalf("DetectColorRegions failed: %v", err)
		}
		if len(again.Regions) != len(first.Regions) {
			t.Fatalf("run %d: got %d regions, want %d", run, len(again.Regions), len(first.Regions))
		}
		for i := range first.Regions {
			a, b := first.Regions[i], again.Regions[i]
			if a.ID != b.ID || a.BBox != b.BBox || a.Category != b.Category || a.Centroid != b.Centroid {
				t.Errorf("run %d region %d differs: %+v vs %+v", run, i, a, b)
			}
		}
	}

	// Ties keep range order, then raster order.
	if first.Regions[1].BBox.X != 10 || first.Regions[2].BBox.X != 200 || first.Regions[3].BBox.X != 100 {
		t.Errorf("unexpected tie order: %v %v %v",
			first.Regions[1].BBox, first.Regions[2].BBox, first.Regions[3].BBox)
	}
}

func TestDetectColorRegions_AreaFilters(t *testing.T) {
	img := createTestImage(200, 200, color.White)
	fillRect(img, 5, 5, 10, 10, pinkFill)     // 100: too small
	fillRect(img, 50, 50, 40, 40, pinkFill)   // 1600: kept
	fillRect(img, 0, 120, 200, 80, blueFill)  // 16000: too large

	opts := DetectOptions{MinArea: 500, MaxAreaFraction: 0.3}
	result, err := DetectColorRegions(toRaster(t, img), []ColorSpec{pinkSpec(), blueSpec()}, opts)
	if err != nil {
		t.Fatalf("DetectColorRegions failed: %v", err)
	}

	if len(result.Regions) != 1 || result.Regions[0].Area != 1600 {
		t.Fatalf("got %d regions, want only the 1600px square", len(result.Regions))
	}
	if result.Stats[0].TooSmall != 1 {
		t.Errorf("pink too_small: got %d, want 1", result.Stats[0].TooSmall)
	}
	if result.Stats[1].TooLarge != 1 {
		t.Errorf("blue too_large: got %d, want 1", result.Stats[1].TooLarge)
	}
}

func TestDetectColorRegions_RelativeMinimum(t *testing.T) {
	img := createTestImage(100, 100, color.White)
	fillRect(img, 10, 10, 20, 20, pinkFill) // 400 = 4% of the image

	for _, tt := range []struct {
		fraction float64
		want     int
	}{{0.03, 1}, {0.05, 0}} {
		result, err := DetectColorRegions(toRaster(t, img), []ColorSpec{pinkSpec()},
			DetectOptions{MinAreaFraction: tt.fraction})
		if err != nil {
			t.Fatalf("DetectColorRegions failed: %v", err)
		}
		if len(result.Regions) != tt.want {
			t.Errorf("fraction %.2f: got %d regions, want %d", tt.fraction, len(result.Regions), tt.want)
		}
	}
}

func TestDetectColorRegions_CleanupRemovesSpeckle(t *testing.T) {
	img := createTestImage(200, 200, color.White)
	fillRect(img, 40, 40, 80, 60, pinkFill)
	// Scattered single pixels of the same color.
	for _, p := range []image.Point{{5, 5}, {150, 20}, {180, 190}, {10, 170}} {
		img.Set(p.X, p.Y, pinkFill)
	}
	// A one-pixel white scratch through the store.
	for x := 40; x < 120; x++ {
		img.Set(x, 70, color.White)
	}

	result, err := DetectColorRegions(toRaster(t, img), []ColorSpec{pinkSpec()}, DetectOptions{})
	if err != nil {
		t.Fatalf("DetectColorRegions failed: %v", err)
	}

	if len(result.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(result.Regions))
	}
	if result.Regions[0].Area != 4800 {
		t.Errorf("area: got %d, want 4800 (scratch closed)", result.Regions[0].Area)
	}
}

func TestDetectColorRegions_NoMatchIsNotError(t *testing.T) {
	img := createTestImage(50, 50, color.White)

	result, err := DetectColorRegions(toRaster(t, img), []ColorSpec{pinkSpec()}, DefaultDetectOptions())
	if err != nil {
		t.Fatalf("DetectColorRegions failed: %v", err)
	}
	if len(result.Regions) != 0 || result.Stats[0].MaskPixels != 0 {
		t.Errorf("expected no regions, got %+v", result)
	}
}

func TestDetectColorRegions_InvalidInput(t *testing.T) {
	r := toRaster(t, createTestImage(10, 10, color.White))
	inverted := ColorSpec{Category: "x", Range: imaging.ColorRange{Lower: imaging.RGB{R: 200}, Upper: imaging.RGB{R: 100}}}

	tests := []struct {
		name   string
		raster *imaging.Raster
		specs  []ColorSpec
	}{
		{"nil raster", nil, []ColorSpec{pinkSpec()}},
		{"no specs", r, nil},
		{"inverted range", r, []ColorSpec{inverted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DetectColorRegions(tt.raster, tt.specs, DefaultDetectOptions())
			if !diag.IsInput(err) {
				t.Errorf("expected InputError, got %v", err)
			}
		})
	}
}

func TestSpecsFromCatalog(t *testing.T) {
	cat, err := region.NewCatalog([]region.CategoryInfo{
		{Name: "a", Color: imaging.RGB{R: 255, G: 182, B: 193}, Range: pinkRange},
		{Name: "b", Color: imaging.RGB{R: 173, G: 216, B: 230}, Range: blueRange},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	specs := SpecsFromCatalog(cat)
	if len(specs) != 2 || specs[0].Category != "a" || specs[1].Color != "#ADD8E6" {
		t.Errorf("unexpected specs: %+v", specs)
	}
}
