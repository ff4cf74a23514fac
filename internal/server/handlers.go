package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/floorplan-mcp/internal/detection"
	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-mcp/internal/labeling"
	"github.com/ironsheep/floorplan-mcp/internal/region"
	"github.com/ironsheep/floorplan-mcp/internal/segment"
)

// extractionMethod names the detect-then-assign pipeline in export documents.
const extractionMethod = "color_based_with_contour_detection"

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "floorplan_load", "floorplan_predict").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).
			Bool("input_error", diag.IsInput(err)).
			Bool("oracle_error", diag.IsOracle(err)).
			Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool completed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies catalog settings and defaults for optional parameters
//  3. Loads the floor plan from the cache, keyed by its path
//  4. Runs the pipeline stage and converts the result to its export form
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image sessions
	case "floorplan_load":
		return s.handleLoad(args)
	case "floorplan_unload":
		return s.handleUnload(args)
	case "floorplan_sample_color":
		return s.handleSampleColor(args)
	case "floorplan_region_preview":
		return s.handleRegionPreview(args)

	// Pipeline
	case "floorplan_detect_regions":
		return s.handleDetectRegions(args)
	case "floorplan_enhance_prompt":
		return s.handleEnhancePrompt(args)
	case "floorplan_predict":
		return s.handlePredict(ctx, args)
	case "floorplan_assign_labels":
		return s.handleAssignLabels(args)
	case "floorplan_extract_stores":
		return s.handleExtractStores(args)
	case "floorplan_overlay":
		return s.handleOverlay(args)

	// Health
	case "floorplan_status":
		return s.handleStatus(ctx)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Session Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type unloadResult struct {
	Evicted []string `json:"evicted"`
	Cached  []string `json:"cached"`
}

func (s *Server) handleUnload(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res := unloadResult{Evicted: []string{}}
	if a.Path == "" {
		res.Evicted = s.cache.Paths()
		s.cache.Clear()
	} else {
		s.cache.Evict(a.Path)
		res.Evicted = append(res.Evicted, a.Path)
	}
	res.Cached = s.cache.Paths()
	return res, nil
}

type sampleColorArgs struct {
	Path      string `json:"path"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Tolerance *int   `json:"tolerance"`
}

type sampleColorResult struct {
	*imaging.ColorResult
	SuggestedRange imaging.ColorRange `json:"suggested_range"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	tol := segment.DefaultEnhanceOptions().Tolerance
	if a.Tolerance != nil {
		tol = *a.Tolerance
	}
	if tol < 0 {
		return nil, diag.Inputf("sample color", "negative tolerance %d", tol)
	}
	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(r, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return sampleColorResult{ColorResult: c, SuggestedRange: imaging.RangeAround(c.RGB, tol)}, nil
}

type regionPreviewArgs struct {
	Path   string  `json:"path"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pad    *int    `json:"pad"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleRegionPreview(args json.RawMessage) (interface{}, error) {
	var a regionPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	pad := 10
	if a.Pad != nil {
		pad = *a.Pad
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(r, a.X, a.Y, a.Width, a.Height, pad, a.Scale)
}

// === Detection ===

// rangeArg is an inline category definition for plans without a catalog.
type rangeArg struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Lower    []int  `json:"lower"`
	Upper    []int  `json:"upper"`
}

type detectArgs struct {
	Path       string     `json:"path"`
	Ranges     []rangeArg `json:"ranges"`
	Categories []string   `json:"categories"`
	StoreLike  *bool      `json:"store_like"`
	MinArea    *int       `json:"min_area"`
}

type detectResult struct {
	Width    int                    `json:"width"`
	Height   int                    `json:"height"`
	Regions  []region.ExportRecord  `json:"regions"`
	Stats    []detection.RangeStats `json:"stats"`
	Warnings []diag.Warning         `json:"warnings"`
}

func (s *Server) handleDetectRegions(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, _, err := s.detect(a)
	if err != nil {
		return nil, err
	}
	out := detectResult{
		Width:    res.Width,
		Height:   res.Height,
		Regions:  exportAll(res.Regions),
		Stats:    res.Stats,
		Warnings: res.Warnings,
	}
	s.logWarnings("detect", res.Warnings)
	return out, nil
}

// detect runs the color detector on a.Path using inline ranges when given
// and the catalog otherwise. It also returns the category catalog in effect.
func (s *Server) detect(a detectArgs) (*detection.DetectResult, *region.Catalog, error) {
	cats, err := s.categories(a.Ranges, a.Categories)
	if err != nil {
		return nil, nil, err
	}

	opts := detection.DefaultDetectOptions()
	if s.catalog != nil {
		opts = s.catalog.Detect
	}
	if a.StoreLike != nil {
		opts.StoreLike = *a.StoreLike
	}
	if a.MinArea != nil {
		if *a.MinArea < 0 {
			return nil, nil, diag.Inputf("detect", "negative min_area %d", *a.MinArea)
		}
		opts.MinArea = *a.MinArea
	}

	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	res, err := detection.DetectColorRegions(r, detection.SpecsFromCatalog(cats), opts)
	if err != nil {
		return nil, nil, err
	}
	s.log.Debug().Str("path", a.Path).Int("regions", len(res.Regions)).Msg("detected regions")
	return res, cats, nil
}

// categories builds the category set for one request: the inline ranges if
// any, else the configured catalog, optionally narrowed to names.
func (s *Server) categories(ranges []rangeArg, names []string) (*region.Catalog, error) {
	if len(ranges) > 0 {
		infos := make([]region.CategoryInfo, len(ranges))
		for i, ra := range ranges {
			info, err := ra.info()
			if err != nil {
				return nil, err
			}
			if s.catalog != nil {
				if _, err := s.catalog.Categories.Parse(ra.Category); err != nil {
					return nil, err
				}
			}
			infos[i] = info
		}
		return region.NewCatalog(infos)
	}

	if s.catalog == nil {
		return nil, diag.Inputf("detect", "no catalog configured; pass explicit ranges")
	}
	if len(names) == 0 {
		return s.catalog.Categories, nil
	}
	infos := make([]region.CategoryInfo, 0, len(names))
	for _, n := range names {
		cat, err := s.catalog.Categories.Parse(n)
		if err != nil {
			return nil, err
		}
		info, _ := s.catalog.Categories.Lookup(cat)
		infos = append(infos, info)
	}
	return region.NewCatalog(infos)
}

func (ra rangeArg) info() (region.CategoryInfo, error) {
	lower, err := parseRGB(ra.Lower)
	if err != nil {
		return region.CategoryInfo{}, fmt.Errorf("range %q lower: %w", ra.Category, err)
	}
	upper, err := parseRGB(ra.Upper)
	if err != nil {
		return region.CategoryInfo{}, fmt.Errorf("range %q upper: %w", ra.Category, err)
	}
	display := imaging.RGB{
		R: uint8((int(lower.R) + int(upper.R)) / 2),
		G: uint8((int(lower.G) + int(upper.G)) / 2),
		B: uint8((int(lower.B) + int(upper.B)) / 2),
	}
	if ra.Color != "" {
		if display, err = imaging.ParseHex(ra.Color); err != nil {
			return region.CategoryInfo{}, err
		}
	}
	return region.CategoryInfo{
		Name:  region.Category(ra.Category),
		Label: ra.Label,
		Color: display,
		Range: imaging.ColorRange{Lower: lower, Upper: upper},
	}, nil
}

func parseRGB(v []int) (imaging.RGB, error) {
	if len(v) != 3 {
		return imaging.RGB{}, diag.Inputf("color", "want [r, g, b], got %d values", len(v))
	}
	for _, c := range v {
		if c < 0 || c > 255 {
			return imaging.RGB{}, diag.Inputf("color", "channel %d outside 0..255", c)
		}
	}
	return imaging.RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}, nil
}

func exportAll(regions []*region.Region) []region.ExportRecord {
	out := make([]region.ExportRecord, len(regions))
	for i, r := range regions {
		out[i] = r.Export()
	}
	return out
}

// === Prompting and Prediction ===

type enhanceArgs struct {
	Path              string  `json:"path"`
	Points            [][]int `json:"points"`
	PointLabels       []int   `json:"point_labels"`
	MaxGuidancePoints *int    `json:"max_guidance_points"`
	Tolerance         *int    `json:"tolerance"`
}

type enhanceResult struct {
	Points      [][]int `json:"points"`
	PointLabels []int   `json:"point_labels"`
	Added       int     `json:"added"`
}

func (s *Server) handleEnhancePrompt(args json.RawMessage) (interface{}, error) {
	var a enhanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, diag.Inputf("enhance", "no points")
	}
	if len(a.PointLabels) > 0 && len(a.PointLabels) != len(a.Points) {
		return nil, diag.Inputf("enhance", "%d point labels for %d points", len(a.PointLabels), len(a.Points))
	}

	opts := s.predictorEnhance()
	if a.MaxGuidancePoints != nil {
		opts.MaxGuidancePoints = *a.MaxGuidancePoints
	}
	if a.Tolerance != nil {
		opts.Tolerance = *a.Tolerance
	}
	if opts.Tolerance < 0 || opts.MaxGuidancePoints < 0 {
		return nil, diag.Inputf("enhance", "tolerance and max_guidance_points must not be negative")
	}

	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	prompts := make([]segment.Prompt, len(a.Points))
	for i, pt := range a.Points {
		if len(pt) != 2 {
			return nil, diag.Inputf("enhance", "point %d has %d coordinates, want 2", i, len(pt))
		}
		positive := true
		if len(a.PointLabels) > 0 {
			switch a.PointLabels[i] {
			case 0:
				positive = false
			case 1:
			default:
				return nil, diag.Inputf("enhance", "point %d label %d, want 0 or 1", i, a.PointLabels[i])
			}
		}
		prompts[i] = segment.Prompt{Point: image.Pt(pt[0], pt[1]), Positive: positive}
	}

	enhanced := segment.EnhancePrompts(r, prompts, opts)
	out := enhanceResult{
		Points:      make([][]int, len(enhanced)),
		PointLabels: make([]int, len(enhanced)),
		Added:       len(enhanced) - len(prompts),
	}
	for i, p := range enhanced {
		out.Points[i] = []int{p.Point.X, p.Point.Y}
		out.PointLabels[i] = p.Label()
	}
	return out, nil
}

func (s *Server) predictorEnhance() segment.EnhanceOptions {
	if s.catalog != nil {
		return s.catalog.Enhance
	}
	return segment.DefaultEnhanceOptions()
}

type predictArgs struct {
	Path string `json:"path"`
	segment.PredictRequest

	// IncludeMasks keeps the full 0/255 grids in the answer (default true).
	IncludeMasks *bool `json:"include_masks"`

	// Extract turns the best mask into a region; Category tags it.
	Extract  bool   `json:"extract"`
	Category string `json:"category"`
}

type predictResult struct {
	segment.PredictResponse
	Region *region.ExportRecord `json:"region,omitempty"`
}

// MarshalJSON adds the extracted region to the prediction's own encoding,
// which the embedded response would otherwise replace.
func (r predictResult) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(r.PredictResponse)
	if err != nil || r.Region == nil {
		return b, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	if fields["region"], err = json.Marshal(r.Region); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (s *Server) handlePredict(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a predictArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, diag.Inputf("predict", "empty image path")
	}

	var cat region.CategoryInfo
	if a.Category != "" {
		if s.catalog == nil {
			cat.Name = region.Category(a.Category)
		} else {
			name, err := s.catalog.Categories.Parse(a.Category)
			if err != nil {
				return nil, err
			}
			cat, _ = s.catalog.Categories.Lookup(name)
		}
	}

	resp := s.predictor.Predict(ctx, a.Path, a.PredictRequest)
	if !resp.Success {
		// Prediction failures are part of the answer, not a transport error.
		s.log.Warn().Err(resp.Err).Str("path", a.Path).Msg("prediction failed")
		return predictResult{PredictResponse: resp}, nil
	}
	s.logWarnings("predict", resp.Warnings)

	out := predictResult{PredictResponse: resp}
	if a.Extract {
		opts := region.ExtractOptions{EpsilonFraction: region.DefaultEpsilonFraction}
		if s.catalog != nil {
			opts.EpsilonFraction = s.catalog.Detect.EpsilonFraction
		}
		reg, warnings, err := region.Extract(resp.Best, opts)
		if err != nil {
			return nil, err
		}
		out.Warnings = append(out.Warnings, warnings...)
		if reg != nil {
			reg.ID = "prediction"
			reg.Category = cat.Name
			if cat.Name != "" && s.catalog != nil {
				reg.Color = cat.Color.Hex()
			}
			rec := reg.Export()
			out.Region = &rec
		}
	}
	if a.IncludeMasks != nil && !*a.IncludeMasks {
		out.BestMask = nil
		masks := make([]segment.MaskResult, len(out.Masks))
		for i, m := range out.Masks {
			m.Mask = nil
			masks[i] = m
		}
		out.Masks = masks
	}
	return out, nil
}

// === Labeling ===

type labelArg struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Center   []int   `json:"center"`
	Radius   float64 `json:"radius"`
}

type matchingArg struct {
	Flexible string `json:"flexible"`
	Mode     string `json:"mode"`
}

type regionArg struct {
	ID       string       `json:"id"`
	Category string       `json:"category"`
	Center   region.Point `json:"center"`
}

type assignArgs struct {
	detectArgs
	Regions  []regionArg  `json:"regions"`
	Labels   []labelArg   `json:"labels"`
	Matching *matchingArg `json:"matching"`
}

type matchResult struct {
	Label    string  `json:"label"`
	RegionID string  `json:"region_id"`
	Distance float64 `json:"distance"`
}

type assignResult struct {
	Matches          []matchResult  `json:"matches"`
	UnmatchedLabels  []string       `json:"unmatched_labels"`
	UnclaimedRegions []string       `json:"unclaimed_regions"`
	Warnings         []diag.Warning `json:"warnings"`
}

func (s *Server) handleAssignLabels(args json.RawMessage) (interface{}, error) {
	var a assignArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var regions []*region.Region
	var cats *region.Catalog
	if len(a.Regions) > 0 {
		regions = make([]*region.Region, len(a.Regions))
		for i, ra := range a.Regions {
			id := ra.ID
			if id == "" {
				id = fmt.Sprintf("region_%d", i+1)
			}
			regions[i] = &region.Region{ID: id, Category: region.Category(ra.Category), Centroid: ra.Center.Image()}
		}
		if s.catalog != nil {
			cats = s.catalog.Categories
		}
	} else {
		res, c, err := s.detect(a.detectArgs)
		if err != nil {
			return nil, err
		}
		regions, cats = res.Regions, c
	}

	specs, matcher, err := s.labelTable(a.Labels, a.Matching, cats)
	if err != nil {
		return nil, err
	}

	asg := labeling.Assign(regions, specs, matcher)
	s.logWarnings("assign", asg.Warnings)

	out := assignResult{
		Matches:          make([]matchResult, len(asg.Matches)),
		UnmatchedLabels:  labelNames(asg.UnmatchedLabels),
		UnclaimedRegions: regionIDs(asg.UnclaimedRegions),
		Warnings:         asg.Warnings,
	}
	for i, m := range asg.Matches {
		out.Matches[i] = matchResult{Label: m.Spec.Name, RegionID: m.Region.ID, Distance: m.Distance}
	}
	if out.Warnings == nil {
		out.Warnings = []diag.Warning{}
	}
	return out, nil
}

// labelTable resolves the label specs and category matcher for a request:
// inline values first, then the catalog. Labels are validated against cats
// when it is known.
func (s *Server) labelTable(labels []labelArg, matching *matchingArg, cats *region.Catalog) ([]labeling.LabelSpec, labeling.Matcher, error) {
	matcher := labeling.ExactMatch()
	if s.catalog != nil {
		matcher = s.catalog.Matcher
	}
	if matching != nil {
		if matching.Flexible == "" {
			matcher = labeling.ExactMatch()
		} else {
			mode, err := labeling.ParseMatchMode(matching.Mode)
			if err != nil {
				return nil, matcher, err
			}
			matcher = labeling.FlexibleMatch(region.Category(matching.Flexible), mode)
		}
	}

	var specs []labeling.LabelSpec
	switch {
	case len(labels) > 0:
		specs = make([]labeling.LabelSpec, len(labels))
		for i, l := range labels {
			if len(l.Center) != 2 {
				return nil, matcher, diag.Inputf("labels", "label %q: center needs 2 coordinates, got %d", l.Name, len(l.Center))
			}
			radius := l.Radius
			if radius == 0 {
				radius = 100
			}
			specs[i] = labeling.LabelSpec{
				Name:     l.Name,
				Category: region.Category(l.Category),
				Expected: image.Pt(l.Center[0], l.Center[1]),
				Radius:   radius,
			}
		}
	case s.catalog != nil:
		specs = s.catalog.Labels
	default:
		return nil, matcher, diag.Inputf("labels", "no catalog configured; pass explicit labels")
	}

	if err := labeling.ValidateSpecs(specs, cats); err != nil {
		return nil, matcher, err
	}
	return specs, matcher, nil
}

func labelNames(specs []labeling.LabelSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

func regionIDs(regions []*region.Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.ID
	}
	return out
}

// extract runs detection then label assignment and assembles the export
// document.
func (s *Server) extract(a assignArgs) (*region.Document, *labeling.Assignment, error) {
	res, cats, err := s.detect(a.detectArgs)
	if err != nil {
		return nil, nil, err
	}
	specs, matcher, err := s.labelTable(a.Labels, a.Matching, cats)
	if err != nil {
		return nil, nil, err
	}
	asg := labeling.Assign(res.Regions, specs, matcher)

	doc := region.NewDocument(res.Width, res.Height, extractionMethod, cats)
	doc.Stores = exportAll(asg.Regions())
	doc.UnmatchedLabels = labelNames(asg.UnmatchedLabels)
	doc.UnclaimedRegions = regionIDs(asg.UnclaimedRegions)
	doc.Warnings = append(doc.Warnings, res.Warnings...)
	doc.Warnings = append(doc.Warnings, asg.Warnings...)
	return doc, &asg, nil
}

func (s *Server) handleExtractStores(args json.RawMessage) (interface{}, error) {
	var a assignArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, _, err := s.extract(a)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("path", a.Path).Int("stores", len(doc.Stores)).
		Int("unmatched_labels", len(doc.UnmatchedLabels)).
		Int("unclaimed_regions", len(doc.UnclaimedRegions)).
		Msg("extracted stores")
	return doc, nil
}

// === Overlay ===

type outlineArg struct {
	Points [][]int `json:"points"`
	Color  string  `json:"color"`
}

type overlayArgs struct {
	assignArgs
	Outlines  []outlineArg `json:"outlines"`
	ShowIndex *bool        `json:"show_index"`
}

type legendEntry struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

type overlayResult struct {
	*imaging.OverlayResult
	Legend []legendEntry `json:"legend"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	showIndex := true
	if a.ShowIndex != nil {
		showIndex = *a.ShowIndex
	}

	var outlines []imaging.Outline
	legend := []legendEntry{}
	if len(a.Outlines) > 0 {
		for i, o := range a.Outlines {
			ol, err := o.outline(i + 1)
			if err != nil {
				return nil, err
			}
			outlines = append(outlines, ol)
			legend = append(legend, legendEntry{Index: i + 1, ID: fmt.Sprintf("outline_%d", i+1)})
		}
	} else {
		regions, err := s.overlayRegions(a.assignArgs)
		if err != nil {
			return nil, err
		}
		for i, r := range regions {
			c, err := imaging.ParseHex(r.Color)
			if err != nil {
				c = imaging.RGB{R: 255}
			}
			outlines = append(outlines, imaging.Outline{Points: r.Polygon, Color: c, Index: i + 1})
			legend = append(legend, legendEntry{Index: i + 1, ID: r.ID, Name: r.Label, Category: string(r.Category)})
		}
	}

	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := imaging.Overlay(r, outlines, showIndex)
	if err != nil {
		return nil, err
	}
	return overlayResult{OverlayResult: res, Legend: legend}, nil
}

// overlayRegions returns the labeled stores followed by the unclaimed
// regions when a label table is available, and the raw detections otherwise.
func (s *Server) overlayRegions(a assignArgs) ([]*region.Region, error) {
	if len(a.Labels) == 0 && (s.catalog == nil || len(s.catalog.Labels) == 0) {
		res, _, err := s.detect(a.detectArgs)
		if err != nil {
			return nil, err
		}
		return res.Regions, nil
	}
	_, asg, err := s.extract(a)
	if err != nil {
		return nil, err
	}
	return append(asg.Regions(), asg.UnclaimedRegions...), nil
}

func (o outlineArg) outline(index int) (imaging.Outline, error) {
	if len(o.Points) < 2 {
		return imaging.Outline{}, diag.Inputf("overlay", "outline %d needs at least 2 points", index)
	}
	pts := make([]image.Point, len(o.Points))
	for i, p := range o.Points {
		if len(p) != 2 {
			return imaging.Outline{}, diag.Inputf("overlay", "outline %d point %d has %d coordinates, want 2", index, i, len(p))
		}
		pts[i] = image.Pt(p[0], p[1])
	}
	c := imaging.RGB{R: 255}
	if o.Color != "" {
		var err error
		if c, err = imaging.ParseHex(o.Color); err != nil {
			return imaging.Outline{}, err
		}
	}
	return imaging.Outline{Points: pts, Color: c, Index: index}, nil
}

// === Status ===

// healthChecker is implemented by oracles that can report readiness.
type healthChecker interface {
	CheckHealth(ctx context.Context) error
}

type oracleStatus struct {
	Configured bool   `json:"configured"`
	URL        string `json:"url,omitempty"`
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
}

type categoryStatus struct {
	Name  string             `json:"name"`
	Label string             `json:"label,omitempty"`
	Color string             `json:"color"`
	Range imaging.ColorRange `json:"range"`
}

type catalogStatus struct {
	Name       string           `json:"name"`
	Categories []categoryStatus `json:"categories"`
	Labels     int              `json:"labels"`
	Matching   string           `json:"matching"`
}

type statusResult struct {
	Version string         `json:"version"`
	Oracle  oracleStatus   `json:"oracle"`
	Catalog *catalogStatus `json:"catalog,omitempty"`
	Images  []string       `json:"images"`
}

func (s *Server) handleStatus(ctx context.Context) (interface{}, error) {
	out := statusResult{Version: Version, Images: s.cache.Paths()}

	if s.oracle != nil {
		out.Oracle.Configured = true
		out.Oracle.URL = s.cfg.OracleURL
		out.Oracle.Healthy = true
		if hc, ok := s.oracle.(healthChecker); ok {
			hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := hc.CheckHealth(hctx); err != nil {
				out.Oracle.Healthy = false
				out.Oracle.Error = err.Error()
			}
		}
	}

	if s.catalog != nil {
		cs := &catalogStatus{
			Name:     s.catalog.Name,
			Labels:   len(s.catalog.Labels),
			Matching: s.catalog.Matcher.String(),
		}
		for _, info := range s.catalog.Categories.Categories() {
			cs.Categories = append(cs.Categories, categoryStatus{
				Name:  string(info.Name),
				Label: info.Label,
				Color: info.Color.Hex(),
				Range: info.Range,
			})
		}
		out.Catalog = cs
	}
	return out, nil
}

func (s *Server) logWarnings(stage string, warnings []diag.Warning) {
	for _, w := range warnings {
		s.log.Debug().Str("stage", stage).Str("kind", string(w.Kind)).Str("subject", w.Subject).Msg(w.Message)
	}
}
