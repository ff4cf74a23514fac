package segment

import (
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-mcp/internal/region"
)

// PredictRequest is the prediction query as received from the serving layer.
// Any of the prompt lists may be empty, but not all of them.
type PredictRequest struct {
	Points      [][]int `json:"points"`       // [[x,y], ...]
	PointLabels []int   `json:"point_labels"` // 1 positive, 0 negative; defaults to all 1
	Boxes       [][]int `json:"boxes"`        // [[x1,y1,x2,y2], ...]
	Enhance     bool    `json:"enhance"`      // run EnhancePrompts before querying
}

// MaskResult is one ranked candidate in a PredictResponse.
type MaskResult struct {
	Mask   [][]int       `json:"mask"`
	Score  float64       `json:"score"`
	IsBest bool          `json:"is_best"`
	Area   int           `json:"area"`
	Center *region.Point `json:"center,omitempty"`
	Flags  []string      `json:"flags,omitempty"`
}

// PredictResponse is the prediction answer. On failure only Success and
// Message are set and Err carries the typed error.
type PredictResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Masks     []MaskResult   `json:"masks"`
	BestMask  [][]int        `json:"best_mask"`
	BestScore float64        `json:"best_score"`
	Shape     []int          `json:"shape"` // [height, width]
	NumMasks  int            `json:"num_masks"`
	Prompts   int            `json:"prompts,omitempty"` // points actually sent
	Warnings  []diag.Warning `json:"warnings,omitempty"`

	Err error `json:"-"`

	// Best is the selected mask, for callers that continue the pipeline.
	Best *imaging.Mask `json:"-"`
}

// MarshalJSON writes a failed prediction as {success, message} only. A
// successful one always carries every result field, zero values included.
func (r PredictResponse) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}{r.Success, r.Message})
	}
	type wire PredictResponse
	return json.Marshal(wire(r))
}

func failure(err error) PredictResponse {
	return PredictResponse{Success: false, Message: err.Error(), Err: err}
}

// PredictorOptions configures a Predictor.
type PredictorOptions struct {
	Enhance EnhanceOptions
	Rank    RankOptions

	// Timeout bounds each oracle call; zero means none.
	Timeout time.Duration
}

// DefaultPredictorOptions uses the default enhancement and ranking settings
// and a 60 second oracle timeout.
func DefaultPredictorOptions() PredictorOptions {
	return PredictorOptions{
		Enhance: DefaultEnhanceOptions(),
		Rank:    DefaultRankOptions(),
		Timeout: 60 * time.Second,
	}
}

// Predictor runs one prediction query end to end: validate, optionally
// enhance, ask the oracle, validate its answer, rank.
//
// A Predictor holds no per-image state. The image is named on every call by
// its session key in the ImageCache, so concurrent predictions against
// different images never interfere.
type Predictor struct {
	oracle Oracle
	cache  *imaging.ImageCache
	opts   PredictorOptions
}

// NewPredictor creates a Predictor. oracle may be nil, in which case every
// prediction fails with an OracleError.
func NewPredictor(oracle Oracle, cache *imaging.ImageCache, opts PredictorOptions) *Predictor {
	return &Predictor{oracle: oracle, cache: cache, opts: opts}
}

// Predict answers req against the image registered under session.
func (p *Predictor) Predict(ctx context.Context, session string, req PredictRequest) PredictResponse {
	r, err := p.cache.Load(session)
	if err != nil {
		return failure(err)
	}

	prompts, boxes, err := parseRequest(req, r)
	if err != nil {
		return failure(err)
	}
	if p.oracle == nil {
		return failure(diag.Oraclef("no segmentation oracle configured"))
	}

	if req.Enhance {
		prompts = EnhancePrompts(r, prompts, p.opts.Enhance)
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	cands, err := p.oracle.Predict(ctx, Query{Image: r, Prompts: prompts, Boxes: boxes, MultiMask: true})
	if err != nil {
		if !diag.IsOracle(err) && !diag.IsInput(err) {
			err = &diag.OracleError{Err: err}
		}
		return failure(err)
	}
	if err := ValidateCandidates(cands, r.Width(), r.Height()); err != nil {
		return failure(err)
	}

	ranking, err := Rank(cands, r.Width(), r.Height(), p.opts.Rank)
	if err != nil {
		return failure(err)
	}

	resp := PredictResponse{
		Success:  true,
		Message:  "prediction completed",
		Masks:    make([]MaskResult, len(ranking.Candidates)),
		Shape:    []int{r.Height(), r.Width()},
		NumMasks: len(ranking.Candidates),
		Prompts:  len(prompts),
		Warnings: ranking.Warnings,
	}
	for i, c := range ranking.Candidates {
		mr := MaskResult{
			Mask:   c.Mask.Rows(),
			Score:  c.Score,
			IsBest: i == ranking.Best,
			Area:   c.Area,
			Flags:  c.Flags(),
		}
		if x, y, ok := c.Mask.Centroid(); ok {
			mr.Center = &region.Point{X: x, Y: y}
		}
		resp.Masks[i] = mr
	}
	best := ranking.BestCandidate()
	resp.BestMask = resp.Masks[ranking.Best].Mask
	resp.BestScore = best.Score
	resp.Best = best.Mask

	return resp
}

// parseRequest validates the wire request against the raster.
func parseRequest(req PredictRequest, r *imaging.Raster) ([]Prompt, []image.Rectangle, error) {
	if len(req.Points) == 0 && len(req.Boxes) == 0 {
		return nil, nil, diag.Inputf("predict", "no points or boxes")
	}
	if len(req.PointLabels) > 0 && len(req.PointLabels) != len(req.Points) {
		return nil, nil, diag.Inputf("predict", "%d point labels for %d points", len(req.PointLabels), len(req.Points))
	}

	prompts := make([]Prompt, len(req.Points))
	for i, pt := range req.Points {
		if len(pt) != 2 {
			return nil, nil, diag.Inputf("predict", "point %d has %d coordinates, want 2", i, len(pt))
		}
		p := image.Pt(pt[0], pt[1])
		if !r.In(p.X, p.Y) {
			return nil, nil, diag.Inputf("predict", "point %d (%d,%d) outside image bounds %dx%d",
				i, p.X, p.Y, r.Width(), r.Height())
		}
		positive := true
		if len(req.PointLabels) > 0 {
			switch req.PointLabels[i] {
			case 0:
				positive = false
			case 1:
			default:
				return nil, nil, diag.Inputf("predict", "point %d label %d, want 0 or 1", i, req.PointLabels[i])
			}
		}
		prompts[i] = Prompt{Point: p, Positive: positive}
	}

	bounds := image.Rect(0, 0, r.Width(), r.Height())
	boxes := make([]image.Rectangle, len(req.Boxes))
	for i, b := range req.Boxes {
		if len(b) != 4 {
			return nil, nil, diag.Inputf("predict", "box %d has %d coordinates, want 4", i, len(b))
		}
		rect := image.Rect(b[0], b[1], b[2], b[3])
		if b[0] >= b[2] || b[1] >= b[3] {
			return nil, nil, diag.Inputf("predict", "box %d %v is empty or inverted", i, b)
		}
		if !rect.In(bounds) {
			return nil, nil, diag.Inputf("predict", "box %d %v outside image bounds %dx%d", i, b, r.Width(), r.Height())
		}
		boxes[i] = rect
	}

	return prompts, boxes, nil
}
