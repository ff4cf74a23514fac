package segment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// HTTPOracle calls a segmentation service over HTTP.
//
// POST {base}/predict takes
//
//	{"image": "<base64 PNG>", "points": [[x,y]], "point_labels": [1],
//	 "boxes": [[x1,y1,x2,y2]], "multimask_output": true}
//
// and answers
//
//	{"success": true, "masks": [{"mask": "<base64 PNG>", "score": 0.97}]}
//
// or {"success": false, "message": "..."}. GET {base}/health answers 200 when
// the model is loaded.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

// NewHTTPOracle creates an adapter for the service at baseURL. timeout bounds
// each HTTP exchange; zero means no client-side limit.
func NewHTTPOracle(baseURL string, timeout time.Duration) *HTTPOracle {
	return &HTTPOracle{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the service root.
func (o *HTTPOracle) BaseURL() string { return o.baseURL }

type oracleRequest struct {
	Image       string  `json:"image"`
	Points      [][]int `json:"points"`
	PointLabels []int   `json:"point_labels"`
	Boxes       [][]int `json:"boxes"`
	MultiMask   bool    `json:"multimask_output"`
}

type oracleMask struct {
	Mask  string  `json:"mask"`
	Score float64 `json:"score"`
}

type oracleResponse struct {
	Success *bool        `json:"success"`
	Message string       `json:"message"`
	Masks   []oracleMask `json:"masks"`
}

// Predict sends q to the service. Every failure, including transport errors,
// non-200 answers and undecodable masks, is a diag.OracleError.
func (o *HTTPOracle) Predict(ctx context.Context, q Query) (Candidates, error) {
	if q.Image == nil {
		return nil, diag.Inputf("oracle", "query has no image")
	}

	var img bytes.Buffer
	if err := png.Encode(&img, q.Image.Image()); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	body := oracleRequest{
		Image:       base64.StdEncoding.EncodeToString(img.Bytes()),
		Points:      make([][]int, len(q.Prompts)),
		PointLabels: make([]int, len(q.Prompts)),
		Boxes:       make([][]int, len(q.Boxes)),
		MultiMask:   q.MultiMask,
	}
	for i, p := range q.Prompts {
		body.Points[i] = []int{p.Point.X, p.Point.Y}
		body.PointLabels[i] = p.Label()
	}
	for i, b := range q.Boxes {
		body.Boxes[i] = []int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, diag.Oraclef("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, diag.Oraclef("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, diag.Oraclef("prediction failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, diag.Oraclef("decode response: %w", err)
	}
	if result.Success != nil && !*result.Success {
		return nil, diag.Oraclef("%s", result.Message)
	}

	cands := make(Candidates, len(result.Masks))
	for i, m := range result.Masks {
		mask, err := decodeMask(m.Mask)
		if err != nil {
			return nil, diag.Oraclef("mask %d: %w", i, err)
		}
		cands[i] = Candidate{Mask: mask, Score: m.Score}
	}
	return cands, nil
}

// CheckHealth reports whether the service answers its health endpoint.
func (o *HTTPOracle) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/health", nil)
	if err != nil {
		return diag.Oraclef("create request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return diag.Oraclef("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return diag.Oraclef("oracle unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func decodeMask(s string) (*imaging.Mask, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid png: %w", err)
	}
	return imaging.MaskFromImage(img), nil
}

// EncodeMask renders a mask as base64 PNG, the wire form used by the service.
func EncodeMask(m *imaging.Mask) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.ToGray()); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
