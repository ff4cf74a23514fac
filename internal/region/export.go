package region

import (
	"github.com/ironsheep/floorplan-mcp/internal/diag"
)

// ExportRecord is the JSON shape of one region consumed by other layers.
type ExportRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	BBox     BBox    `json:"bbox"`
	Polygon  []Point `json:"polygon"`
	Center   Point   `json:"center"`
	Area     int     `json:"area"`
}

// Export renders the region as an ExportRecord.
func (r *Region) Export() ExportRecord {
	poly := make([]Point, len(r.Polygon))
	for i, p := range r.Polygon {
		poly[i] = PointOf(p)
	}
	return ExportRecord{
		ID:       r.ID,
		Name:     r.Label,
		Category: string(r.Category),
		Color:    r.Color,
		BBox:     r.BBox,
		Polygon:  poly,
		Center:   PointOf(r.Centroid),
		Area:     r.Area,
	}
}

// Dimensions is a width/height pair.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CategoryExport is the display information for one category.
type CategoryExport struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Document is the full extraction result for one floor plan.
type Document struct {
	ImageDimensions  Dimensions                `json:"image_dimensions"`
	ExtractionMethod string                    `json:"extraction_method"`
	Categories       map[string]CategoryExport `json:"categories"`
	Stores           []ExportRecord            `json:"stores"`
	UnmatchedLabels  []string                  `json:"unmatched_labels"`
	UnclaimedRegions []string                  `json:"unclaimed_regions"`
	Warnings         []diag.Warning            `json:"warnings"`
}

// NewDocument starts a document for a width × height plan, listing the
// catalog's categories. Slices are non-nil so they encode as [].
func NewDocument(width, height int, method string, catalog *Catalog) *Document {
	doc := &Document{
		ImageDimensions:  Dimensions{Width: width, Height: height},
		ExtractionMethod: method,
		Categories:       make(map[string]CategoryExport),
		Stores:           []ExportRecord{},
		UnmatchedLabels:  []string{},
		UnclaimedRegions: []string{},
		Warnings:         []diag.Warning{},
	}
	if catalog != nil {
		for _, info := range catalog.Categories() {
			doc.Categories[string(info.Name)] = CategoryExport{Color: info.Color.Hex(), Label: info.Label}
		}
	}
	return doc
}
