package detection

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/geometry"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-mcp/internal/region"
)

// cleanupKernel is the square element used to close and open membership masks.
const cleanupKernel = 3

// ColorSpec ties a color range on the plan to the category it marks.
type ColorSpec struct {
	Category region.Category
	Color    string // display color, "#RRGGBB"
	Range    imaging.ColorRange
}

// SpecsFromCatalog returns one ColorSpec per catalog category, in catalog order.
func SpecsFromCatalog(c *region.Catalog) []ColorSpec {
	infos := c.Categories()
	specs := make([]ColorSpec, len(infos))
	for i, info := range infos {
		specs[i] = ColorSpec{
			Category: info.Name,
			Color:    info.Color.Hex(),
			Range:    info.Range,
		}
	}
	return specs
}

// DetectOptions bounds which contours become regions. A zero value for any
// limit disables it.
type DetectOptions struct {
	// MinArea is the absolute minimum filled area in pixels.
	MinArea int

	// MinAreaFraction and MaxAreaFraction bound the filled area relative to
	// the total pixel count of the image.
	MinAreaFraction float64
	MaxAreaFraction float64

	// StoreLike enables the shape filter; Shape overrides its thresholds
	// (zero value selects DefaultStoreShape).
	StoreLike bool
	Shape     ShapeFilter

	// EpsilonFraction is passed to polygon extraction.
	EpsilonFraction float64
}

// DefaultDetectOptions mirrors the thresholds used on the reference plans:
// regions over 2000 pixels and between 0.2% and 50% of the image.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		MinArea:         2000,
		MinAreaFraction: 0.002,
		MaxAreaFraction: 0.5,
		EpsilonFraction: region.DefaultEpsilonFraction,
	}
}

// RangeStats summarizes what one color range produced.
type RangeStats struct {
	Category     region.Category `json:"category"`
	MaskPixels   int             `json:"mask_pixels"`
	Contours     int             `json:"contours"`
	TooSmall     int             `json:"too_small"`
	TooLarge     int             `json:"too_large"`
	NotStoreLike int             `json:"not_store_like"`
	Regions      int             `json:"regions"`
}

// DetectResult contains every region found on the plan.
type DetectResult struct {
	// Width and Height are the raster dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Regions are sorted by area (largest first). IDs are "store_1",
	// "store_2", … in that order.
	Regions []*region.Region `json:"-"`

	// Stats has one entry per input ColorSpec, in input order.
	Stats []RangeStats `json:"stats"`

	// Warnings collects degenerate-geometry diagnostics from extraction.
	Warnings []diag.Warning `json:"warnings"`
}

// DetectColorRegions extracts store regions from r for each color spec.
//
// Parameters:
//   - r: Floor plan raster.
//   - specs: One entry per category to detect. Must not be empty.
//   - opts: Area and shape thresholds; see DefaultDetectOptions.
//
// Returns:
//   - *DetectResult: Regions sorted by descending area, with per-range stats.
//   - error: diag.InputError for a nil raster, no specs, or an inverted range.
//
// A range that matches no pixels contributes zero regions; that is not an
// error.
func DetectColorRegions(r *imaging.Raster, specs []ColorSpec, opts DetectOptions) (*DetectResult, error) {
	if r == nil {
		return nil, diag.Inputf("detect", "nil raster")
	}
	if len(specs) == 0 {
		return nil, diag.Inputf("detect", "no color ranges")
	}
	for _, s := range specs {
		if _, err := imaging.NewColorRange(s.Range.Lower, s.Range.Upper); err != nil {
			return nil, fmt.Errorf("category %q: %w", s.Category, err)
		}
	}

	type rangeResult struct {
		regions  []*region.Region
		stats    RangeStats
		warnings []diag.Warning
	}
	results := make([]rangeResult, len(specs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, spec := range specs {
		g.Go(func() error {
			regions, stats, warnings := detectRange(r, spec, opts)
			results[i] = rangeResult{regions: regions, stats: stats, warnings: warnings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &DetectResult{
		Width:    r.Width(),
		Height:   r.Height(),
		Regions:  []*region.Region{},
		Stats:    make([]RangeStats, len(specs)),
		Warnings: []diag.Warning{},
	}
	for i, res := range results {
		out.Regions = append(out.Regions, res.regions...)
		out.Stats[i] = res.stats
		out.Warnings = append(out.Warnings, res.warnings...)
	}

	sort.SliceStable(out.Regions, func(i, j int) bool {
		return out.Regions[i].Area > out.Regions[j].Area
	})
	for i, reg := range out.Regions {
		reg.ID = fmt.Sprintf("store_%d", i+1)
	}

	return out, nil
}

// detectRange runs membership, cleanup, tracing and filtering for one spec.
func detectRange(r *imaging.Raster, spec ColorSpec, opts DetectOptions) ([]*region.Region, RangeStats, []diag.Warning) {
	stats := RangeStats{Category: spec.Category}

	mask := imaging.InRange(r, spec.Range)
	stats.MaskPixels = mask.Area()
	if stats.MaskPixels == 0 {
		return nil, stats, nil
	}

	mask = imaging.Open(imaging.Close(mask, cleanupKernel), cleanupKernel)
	contours := geometry.ExternalContours(mask)
	stats.Contours = len(contours)

	total := float64(r.Pixels())
	minArea := opts.MinArea
	if f := int(opts.MinAreaFraction * total); f > minArea {
		minArea = f
	}
	maxArea := 0
	if opts.MaxAreaFraction > 0 {
		maxArea = int(opts.MaxAreaFraction * total)
	}
	shape := opts.Shape
	if shape == (ShapeFilter{}) {
		shape = DefaultStoreShape
	}

	var regions []*region.Region
	var warnings []diag.Warning
	for _, c := range contours {
		switch {
		case c.Area < minArea:
			stats.TooSmall++
			continue
		case maxArea > 0 && c.Area > maxArea:
			stats.TooLarge++
			continue
		case opts.StoreLike && !shape.Accept(c):
			stats.NotStoreLike++
			continue
		}

		reg, w := region.FromContour(c, region.ExtractOptions{EpsilonFraction: opts.EpsilonFraction})
		for i := range w {
			w[i].Subject = string(spec.Category)
		}
		warnings = append(warnings, w...)
		if reg == nil {
			continue
		}
		reg.Category = spec.Category
		reg.Color = spec.Color
		regions = append(regions, reg)
	}
	stats.Regions = len(regions)

	return regions, stats, warnings
}
