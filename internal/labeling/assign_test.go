package labeling

import (
	"image"
	"testing"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-mcp/internal/region"
)

const (
	ladies    region.Category = "レディスファッション"
	interior  region.Category = "インテリア・生活雑貨"
	accessory region.Category = "ファッション雑貨"
)

// createRegion builds a square region of the given category centered on (cx, cy).
func createRegion(id string, cat region.Category, cx, cy int) *region.Region {
	return &region.Region{
		ID:       id,
		Polygon:  []image.Point{{cx - 10, cy - 10}, {cx + 10, cy - 10}, {cx + 10, cy + 10}, {cx - 10, cy + 10}},
		Centroid: image.Pt(cx, cy),
		BBox:     region.BBox{X: cx - 10, Y: cy - 10, Width: 21, Height: 21},
		Area:     441,
		Category: cat,
	}
}

func TestAssign_MatchAndUnmatched(t *testing.T) {
	regions := []*region.Region{createRegion("store_0", ladies, 310, 148)}
	specs := []LabelSpec{
		{Name: "シルパイ シルスチュアート", Category: ladies, Expected: image.Pt(310, 150), Radius: 100},
		{Name: "ダイアナ", Category: ladies, Expected: image.Pt(800, 800), Radius: 100},
	}

	a := Assign(regions, specs, ExactMatch())

	if len(a.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(a.Matches))
	}
	m := a.Matches[0]
	if m.Region.Label != "シルパイ シルスチュアート" || m.Region.ID != "store_0" {
		t.Errorf("unexpected match %+v", m.Region)
	}
	if m.Distance != 2 {
		t.Errorf("distance: got %f, want 2", m.Distance)
	}
	if regions[0].Label != "" {
		t.Error("input region must not be modified")
	}

	if len(a.UnmatchedLabels) != 1 || a.UnmatchedLabels[0].Name != "ダイアナ" {
		t.Errorf("unmatched: got %+v", a.UnmatchedLabels)
	}
	if len(a.UnclaimedRegions) != 0 {
		t.Errorf("unclaimed: got %d", len(a.UnclaimedRegions))
	}
	if len(a.Warnings) != 1 || a.Warnings[0].Kind != diag.UnmatchedLabel {
		t.Errorf("warnings: got %+v", a.Warnings)
	}
}

func TestAssign_RadiusIsStrict(t *testing.T) {
	regions := []*region.Region{createRegion("store_0", ladies, 100, 0)}

	tests := []struct {
		radius float64
		want   int
	}{
		{100, 0},
		{100.5, 1},
	}
	for _, tt := range tests {
		a := Assign(regions, []LabelSpec{{Name: "a", Category: ladies, Expected: image.Pt(0, 0), Radius: tt.radius}}, ExactMatch())
		if len(a.Matches) != tt.want {
			t.Errorf("radius %v: got %d matches, want %d", tt.radius, len(a.Matches), tt.want)
		}
	}
}

func TestAssign_Injective(t *testing.T) {
	regions := []*region.Region{
		createRegion("store_0", ladies, 100, 100),
		createRegion("store_1", ladies, 130, 100),
		createRegion("store_2", interior, 300, 300),
	}
	// Three labels crowd the same two ladies' regions.
	specs := []LabelSpec{
		{Name: "a", Category: ladies, Expected: image.Pt(105, 100), Radius: 100},
		{Name: "b", Category: ladies, Expected: image.Pt(100, 100), Radius: 100},
		{Name: "c", Category: ladies, Expected: image.Pt(110, 100), Radius: 100},
	}

	a := Assign(regions, specs, ExactMatch())

	seenRegion := map[string]bool{}
	seenLabel := map[string]bool{}
	for _, m := range a.Matches {
		if seenRegion[m.Region.ID] {
			t.Errorf("region %s claimed twice", m.Region.ID)
		}
		if seenLabel[m.Spec.Name] {
			t.Errorf("label %s used twice", m.Spec.Name)
		}
		seenRegion[m.Region.ID] = true
		seenLabel[m.Spec.Name] = true
	}

	// Label order decides: "a" takes store_0, "b" is left with store_1.
	if len(a.Matches) != 2 || a.Matches[0].Region.ID != "store_0" || a.Matches[1].Region.ID != "store_1" {
		t.Fatalf("unexpected matches: %+v", a.Matches)
	}
	if len(a.UnmatchedLabels) != 1 || a.UnmatchedLabels[0].Name != "c" {
		t.Errorf("unmatched: %+v", a.UnmatchedLabels)
	}
	if len(a.UnclaimedRegions) != 1 || a.UnclaimedRegions[0].ID != "store_2" {
		t.Errorf("unclaimed: %+v", a.UnclaimedRegions)
	}
	if got := len(a.Regions()); got != 2 {
		t.Errorf("Regions: got %d", got)
	}
}

func TestAssign_TiesGoToFirstRegion(t *testing.T) {
	regions := []*region.Region{
		createRegion("store_0", ladies, 90, 100),
		createRegion("store_1", ladies, 110, 100),
	}
	a := Assign(regions, []LabelSpec{{Name: "a", Category: ladies, Expected: image.Pt(100, 100), Radius: 50}}, ExactMatch())
	if len(a.Matches) != 1 || a.Matches[0].Region.ID != "store_0" {
		t.Errorf("expected store_0, got %+v", a.Matches)
	}
}

func TestAssign_Matchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		label   region.Category
		region  region.Category
		want    bool
	}{
		{"exact same", ExactMatch(), ladies, ladies, true},
		{"exact different", ExactMatch(), ladies, interior, false},
		{"flexible label claims any", FlexibleMatch(accessory, MatchLabel), accessory, ladies, true},
		{"flexible region one-directional", FlexibleMatch(accessory, MatchLabel), ladies, accessory, false},
		{"flexible region symmetric", FlexibleMatch(accessory, MatchSymmetric), ladies, accessory, true},
		{"unrelated categories", FlexibleMatch(accessory, MatchSymmetric), ladies, interior, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := []*region.Region{createRegion("store_0", tt.region, 50, 50)}
			a := Assign(regions, []LabelSpec{{Name: "x", Category: tt.label, Expected: image.Pt(50, 50), Radius: 10}}, tt.matcher)
			if got := len(a.Matches) == 1; got != tt.want {
				t.Errorf("matched = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssign_Empty(t *testing.T) {
	a := Assign(nil, nil, ExactMatch())
	if a.Matches == nil || a.UnmatchedLabels == nil || a.UnclaimedRegions == nil {
		t.Error("result slices must be non-nil")
	}

	regions := []*region.Region{createRegion("store_0", ladies, 50, 50)}
	a = Assign(regions, nil, ExactMatch())
	if len(a.UnclaimedRegions) != 1 || a.Warnings[0].Kind != diag.UnclaimedRegion {
		t.Errorf("expected one unclaimed region, got %+v", a)
	}
}

func TestParseMatchMode(t *testing.T) {
	tests := []struct {
		in      string
		want    MatchMode
		wantErr bool
	}{
		{"", MatchLabel, false},
		{"label", MatchLabel, false},
		{"symmetric", MatchSymmetric, false},
		{"both", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMatchMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMatchMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMatchMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateSpecs(t *testing.T) {
	catalog, err := region.NewCatalog([]region.CategoryInfo{
		{Name: ladies, Range: imaging.ColorRange{Lower: imaging.RGB{R: 210, G: 190, B: 200}, Upper: imaging.RGB{R: 240, G: 220, B: 235}}},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	tests := []struct {
		name    string
		spec    LabelSpec
		wantErr bool
	}{
		{"valid", LabelSpec{Name: "a", Category: ladies, Radius: 100}, false},
		{"no name", LabelSpec{Category: ladies, Radius: 100}, true},
		{"unknown category", LabelSpec{Name: "a", Category: interior, Radius: 100}, true},
		{"zero radius", LabelSpec{Name: "a", Category: ladies}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpecs([]LabelSpec{tt.spec}, catalog)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !diag.IsInput(err) {
				t.Errorf("expected InputError, got %T", err)
			}
		})
	}
}
