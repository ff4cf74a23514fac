package labeling

import (
	"image"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/geometry"
	"github.com/ironsheep/floorplan-mcp/internal/region"
)

// LabelSpec is one row of the label table: a store name, the category it is
// expected to be colored with, and roughly where its center should be.
type LabelSpec struct {
	Name     string
	Category region.Category
	Expected image.Point
	Radius   float64 // a region must lie strictly closer than this
}

// ValidateSpecs checks a label table against a catalog: names are non-empty,
// categories exist and radii are positive. Names may repeat; a store that
// spans several regions is listed once per region.
func ValidateSpecs(specs []LabelSpec, c *region.Catalog) error {
	for i, s := range specs {
		if s.Name == "" {
			return diag.Inputf("labels", "label %d has no name", i)
		}
		if c != nil {
			if _, ok := c.Lookup(s.Category); !ok {
				return diag.Inputf("labels", "label %q: unknown category %q", s.Name, s.Category)
			}
		}
		if !(s.Radius > 0) {
			return diag.Inputf("labels", "label %q: search radius %v must be positive", s.Name, s.Radius)
		}
	}
	return nil
}

// Match is one accepted label-to-region binding.
type Match struct {
	Spec     LabelSpec
	Region   *region.Region // labeled copy of the claimed region
	Distance float64
}

// Assignment is the outcome of Assign.
type Assignment struct {
	Matches          []Match          // in label order
	UnmatchedLabels  []LabelSpec      // in label order
	UnclaimedRegions []*region.Region // in input order
	Warnings         []diag.Warning
}

// Regions returns the labeled regions in label order.
func (a *Assignment) Regions() []*region.Region {
	out := make([]*region.Region, len(a.Matches))
	for i, m := range a.Matches {
		out[i] = m.Region
	}
	return out
}

// Assign greedily binds labels to regions in label order.
//
// For each label it picks, among the unclaimed regions whose category the
// matcher accepts, the one whose centroid is nearest the expected point, and
// accepts it only when that distance is below the label's radius. Ties go to
// the region that comes first in regions. Each region receives at most one
// label and each label claims at most one region.
//
// The input regions are not modified; matched regions are returned as
// labeled copies.
func Assign(regions []*region.Region, specs []LabelSpec, m Matcher) Assignment {
	claimed := make([]bool, len(regions))
	a := Assignment{
		Matches:          []Match{},
		UnmatchedLabels:  []LabelSpec{},
		UnclaimedRegions: []*region.Region{},
	}

	for _, spec := range specs {
		best := -1
		bestDist := 0.0
		for i, r := range regions {
			if claimed[i] || !m.Match(spec.Category, r.Category) {
				continue
			}
			d := geometry.Distance(r.Centroid, spec.Expected)
			if d >= spec.Radius {
				continue
			}
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}

		if best < 0 {
			a.UnmatchedLabels = append(a.UnmatchedLabels, spec)
			a.Warnings = append(a.Warnings, diag.Warn(diag.UnmatchedLabel, spec.Name,
				"no %s region within %.0f px of (%d,%d)", spec.Category, spec.Radius, spec.Expected.X, spec.Expected.Y))
			continue
		}

		claimed[best] = true
		a.Matches = append(a.Matches, Match{
			Spec:     spec,
			Region:   regions[best].WithLabel(spec.Name),
			Distance: bestDist,
		})
	}

	for i, r := range regions {
		if claimed[i] {
			continue
		}
		a.UnclaimedRegions = append(a.UnclaimedRegions, r)
		a.Warnings = append(a.Warnings, diag.Warn(diag.UnclaimedRegion, r.ID,
			"%s region at (%d,%d) received no label", r.Category, r.Centroid.X, r.Centroid.Y))
	}

	return a
}
