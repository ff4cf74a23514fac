package config

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/floorplan-mcp/internal/detection"
	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-mcp/internal/labeling"
	"github.com/ironsheep/floorplan-mcp/internal/region"
	"github.com/ironsheep/floorplan-mcp/internal/segment"
)

// catalogFile is the YAML layout of a catalog.
type catalogFile struct {
	Name          string         `yaml:"name"`
	Categories    []categoryFile `yaml:"categories"`
	Matching      matchingFile   `yaml:"matching"`
	Detection     detectionFile  `yaml:"detection"`
	Refinement    refineFile     `yaml:"refinement"`
	Ranking       rankFile       `yaml:"ranking"`
	Enhancement   enhanceFile    `yaml:"enhancement"`
	DefaultRadius float64        `yaml:"default_radius"`
	Labels        []labelFile    `yaml:"labels"`
}

type categoryFile struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Color string `yaml:"color"`
	Lower []int  `yaml:"lower"`
	Upper []int  `yaml:"upper"`
}

type matchingFile struct {
	Flexible string `yaml:"flexible"`
	Mode     string `yaml:"mode"`
}

type detectionFile struct {
	MinArea         int     `yaml:"min_area"`
	MinAreaFraction float64 `yaml:"min_area_fraction"`
	MaxAreaFraction float64 `yaml:"max_area_fraction"`
	StoreLike       bool    `yaml:"store_like"`
	MaxAspect       float64 `yaml:"max_aspect"`
	MinSolidity     float64 `yaml:"min_solidity"`
	MinSide         int     `yaml:"min_side"`
	EpsilonFraction float64 `yaml:"epsilon_fraction"`
}

type refineFile struct {
	SkipArea int     `yaml:"skip_area"`
	Kernel   int     `yaml:"kernel"`
	MinRatio float64 `yaml:"min_ratio"`
	MaxRatio float64 `yaml:"max_ratio"`
}

type rankFile struct {
	WholeImageFraction float64 `yaml:"whole_image_fraction"`
	SmallFraction      float64 `yaml:"small_fraction"`
}

type enhanceFile struct {
	MaxGuidancePoints int `yaml:"max_guidance_points"`
	Tolerance         int `yaml:"tolerance"`
	Kernel            int `yaml:"kernel"`
}

type labelFile struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Center   []int   `yaml:"center"`
	Radius   float64 `yaml:"radius"`
}

// Catalog is everything the pipeline needs to know about one floor plan:
// its categories and their colors, tuning parameters and the label table.
type Catalog struct {
	Name       string
	Categories *region.Catalog
	Matcher    labeling.Matcher
	Detect     detection.DetectOptions
	Enhance    segment.EnhanceOptions
	Rank       segment.RankOptions
	Labels     []labeling.LabelSpec
}

// ColorSpecs returns the detection specs for every category.
func (c *Catalog) ColorSpecs() []detection.ColorSpec {
	return detection.SpecsFromCatalog(c.Categories)
}

// PredictorOptions combines the catalog's enhancement and ranking settings
// with a caller-side oracle timeout.
func (c *Catalog) PredictorOptions(cfg *Config) segment.PredictorOptions {
	opts := segment.PredictorOptions{Enhance: c.Enhance, Rank: c.Rank}
	if cfg != nil {
		opts.Timeout = cfg.OracleTimeout
	}
	return opts
}

// defaultFile seeds decoding so omitted sections keep the pipeline defaults.
func defaultFile() catalogFile {
	d := detection.DefaultDetectOptions()
	s := detection.DefaultStoreShape
	r := segment.DefaultRefineOptions()
	k := segment.DefaultRankOptions()
	e := segment.DefaultEnhanceOptions()
	return catalogFile{
		Matching: matchingFile{Mode: string(labeling.MatchLabel)},
		Detection: detectionFile{
			MinArea:         d.MinArea,
			MinAreaFraction: d.MinAreaFraction,
			MaxAreaFraction: d.MaxAreaFraction,
			MaxAspect:       s.MaxAspect,
			MinSolidity:     s.MinSolidity,
			MinSide:         s.MinSide,
			EpsilonFraction: d.EpsilonFraction,
		},
		Refinement:    refineFile{SkipArea: r.SkipArea, Kernel: r.Kernel, MinRatio: r.MinRatio, MaxRatio: r.MaxRatio},
		Ranking:       rankFile{WholeImageFraction: k.WholeImageFraction, SmallFraction: k.SmallFraction},
		Enhancement:   enhanceFile{MaxGuidancePoints: e.MaxGuidancePoints, Tolerance: e.Tolerance, Kernel: e.Kernel},
		DefaultRadius: 100,
	}
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog. Unknown keys are
// rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	f := defaultFile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, diag.Inputf("catalog", "invalid YAML: %v", err)
	}
	return f.build()
}

func (f catalogFile) build() (*Catalog, error) {
	infos := make([]region.CategoryInfo, len(f.Categories))
	for i, cf := range f.Categories {
		info, err := cf.build()
		if err != nil {
			return nil, err
		}
		infos[i] = info
	}
	cats, err := region.NewCatalog(infos)
	if err != nil {
		return nil, err
	}

	matcher := labeling.ExactMatch()
	if f.Matching.Flexible != "" {
		flex, err := cats.Parse(f.Matching.Flexible)
		if err != nil {
			return nil, fmt.Errorf("matching: %w", err)
		}
		mode, err := labeling.ParseMatchMode(f.Matching.Mode)
		if err != nil {
			return nil, err
		}
		matcher = labeling.FlexibleMatch(flex, mode)
	}

	if err := f.validateTuning(); err != nil {
		return nil, err
	}

	labels := make([]labeling.LabelSpec, len(f.Labels))
	for i, lf := range f.Labels {
		if len(lf.Center) != 2 {
			return nil, diag.Inputf("labels", "label %q: center needs 2 coordinates, got %d", lf.Name, len(lf.Center))
		}
		radius := lf.Radius
		if radius == 0 {
			radius = f.DefaultRadius
		}
		labels[i] = labeling.LabelSpec{
			Name:     lf.Name,
			Category: region.Category(lf.Category),
			Expected: image.Pt(lf.Center[0], lf.Center[1]),
			Radius:   radius,
		}
	}
	if err := labeling.ValidateSpecs(labels, cats); err != nil {
		return nil, err
	}

	d := f.Detection
	return &Catalog{
		Name:       f.Name,
		Categories: cats,
		Matcher:    matcher,
		Detect: detection.DetectOptions{
			MinArea:         d.MinArea,
			MinAreaFraction: d.MinAreaFraction,
			MaxAreaFraction: d.MaxAreaFraction,
			StoreLike:       d.StoreLike,
			Shape:           detection.ShapeFilter{MaxAspect: d.MaxAspect, MinSolidity: d.MinSolidity, MinSide: d.MinSide},
			EpsilonFraction: d.EpsilonFraction,
		},
		Enhance: segment.EnhanceOptions{
			MaxGuidancePoints: f.Enhancement.MaxGuidancePoints,
			Tolerance:         f.Enhancement.Tolerance,
			Kernel:            f.Enhancement.Kernel,
		},
		Rank: segment.RankOptions{
			Refine: segment.RefineOptions{
				SkipArea: f.Refinement.SkipArea,
				Kernel:   f.Refinement.Kernel,
				MinRatio: f.Refinement.MinRatio,
				MaxRatio: f.Refinement.MaxRatio,
			},
			WholeImageFraction: f.Ranking.WholeImageFraction,
			SmallFraction:      f.Ranking.SmallFraction,
		},
		Labels: labels,
	}, nil
}

func (cf categoryFile) build() (region.CategoryInfo, error) {
	if cf.Name == "" {
		return region.CategoryInfo{}, diag.Inputf("catalog", "category without a name")
	}
	display, err := imaging.ParseHex(cf.Color)
	if err != nil {
		return region.CategoryInfo{}, fmt.Errorf("category %q color: %w", cf.Name, err)
	}
	lower, err := rgbFromList(cf.Lower)
	if err != nil {
		return region.CategoryInfo{}, fmt.Errorf("category %q lower: %w", cf.Name, err)
	}
	upper, err := rgbFromList(cf.Upper)
	if err != nil {
		return region.CategoryInfo{}, fmt.Errorf("category %q upper: %w", cf.Name, err)
	}
	return region.CategoryInfo{
		Name:  region.Category(cf.Name),
		Label: cf.Label,
		Color: display,
		Range: imaging.ColorRange{Lower: lower, Upper: upper},
	}, nil
}

func rgbFromList(v []int) (imaging.RGB, error) {
	if len(v) != 3 {
		return imaging.RGB{}, diag.Inputf("catalog", "want [r, g, b], got %d values", len(v))
	}
	for _, c := range v {
		if c < 0 || c > 255 {
			return imaging.RGB{}, diag.Inputf("catalog", "channel %d outside 0..255", c)
		}
	}
	return imaging.RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}, nil
}

func (f catalogFile) validateTuning() error {
	d := f.Detection
	switch {
	case d.MinArea < 0:
		return diag.Inputf("detection", "min_area %d is negative", d.MinArea)
	case d.MinAreaFraction < 0 || d.MaxAreaFraction < 0 || d.MaxAreaFraction > 1:
		return diag.Inputf("detection", "area fractions must lie in [0, 1]")
	case d.MaxAreaFraction > 0 && d.MinAreaFraction > d.MaxAreaFraction:
		return diag.Inputf("detection", "min_area_fraction %v exceeds max_area_fraction %v", d.MinAreaFraction, d.MaxAreaFraction)
	case d.EpsilonFraction <= 0:
		return diag.Inputf("detection", "epsilon_fraction must be positive")
	}
	r := f.Refinement
	if r.MinRatio > r.MaxRatio || r.MinRatio < 0 {
		return diag.Inputf("refinement", "area ratio bounds [%v, %v] are invalid", r.MinRatio, r.MaxRatio)
	}
	if f.Enhancement.Tolerance < 0 || f.Enhancement.MaxGuidancePoints < 0 {
		return diag.Inputf("enhancement", "tolerance and max_guidance_points must not be negative")
	}
	return nil
}
