package region

import (
	"image"
)

// BBox is an axis-aligned pixel box. Width and Height count pixels, so a
// single pixel has a 1×1 box.
type BBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BBoxFromRect converts an exclusive-max rectangle to a BBox.
func BBoxFromRect(r image.Rectangle) BBox {
	return BBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the box as an exclusive-max rectangle.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Contains reports whether p lies inside the box.
func (b BBox) Contains(p image.Point) bool {
	return p.In(b.Rect())
}

// Point is a JSON pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PointOf converts an image.Point.
func PointOf(p image.Point) Point { return Point{X: p.X, Y: p.Y} }

// Image converts back to an image.Point.
func (p Point) Image() image.Point { return image.Pt(p.X, p.Y) }

// Region is one store outline.
//
// Polygon is implicitly closed and has at least three vertices. Area is the
// pixel count backing the region, not the polygon's analytic area.
type Region struct {
	ID       string
	Polygon  []image.Point
	Centroid image.Point
	BBox     BBox
	Area     int
	Category Category // zero when unknown
	Color    string   // display color, "#RRGGBB"
	Label    string   // assigned store name, empty until labeled
}

// Clone returns a deep copy so the polygon can be handed to another stage.
func (r *Region) Clone() *Region {
	c := *r
	c.Polygon = append([]image.Point(nil), r.Polygon...)
	return &c
}

// WithLabel returns a copy of the region bound to name.
func (r *Region) WithLabel(name string) *Region {
	c := r.Clone()
	c.Label = name
	return c
}
