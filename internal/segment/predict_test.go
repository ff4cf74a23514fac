package segment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// fakeOracle answers every query with the masks produced by answer.
type fakeOracle struct {
	mu      sync.Mutex
	queries []Query
	answer  func(q Query) (Candidates, error)
}

func (f *fakeOracle) Predict(ctx context.Context, q Query) (Candidates, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.answer(q)
}

// rectOracle returns a mask of the store under the first prompt plus a
// lower-scored whole-image mask.
func rectOracle(store image.Rectangle) *fakeOracle {
	return &fakeOracle{answer: func(q Query) (Candidates, error) {
		w, h := q.Image.Width(), q.Image.Height()
		return Candidates{
			{Mask: createRectMask(w, h, store.Min.X, store.Min.Y, store.Max.X, store.Max.Y), Score: 0.95},
			{Mask: createRectMask(w, h, 0, 0, w, h), Score: 0.60},
		}, nil
	}}
}

func newTestPredictor(t *testing.T, oracle Oracle) (*Predictor, string) {
	t.Helper()
	img := createInMemoryImage(200, 150, color.White)
	fillRect(img, image.Rect(40, 30, 120, 90), storePink)

	cache := imaging.NewImageCache()
	cache.Put("plan.png", toRaster(t, img))
	return NewPredictor(oracle, cache, DefaultPredictorOptions()), "plan.png"
}

func TestPredictor_Predict(t *testing.T) {
	store := image.Rect(40, 30, 120, 90)
	p, session := newTestPredictor(t, rectOracle(store))

	resp := p.Predict(context.Background(), session, PredictRequest{
		Points:      [][]int{{80, 60}},
		PointLabels: []int{1},
	})

	if !resp.Success {
		t.Fatalf("prediction failed: %s", resp.Message)
	}
	if resp.NumMasks != 2 || len(resp.Masks) != 2 {
		t.Fatalf("num_masks: got %d", resp.NumMasks)
	}
	if resp.Shape[0] != 150 || resp.Shape[1] != 200 {
		t.Errorf("shape: got %v, want [150 200]", resp.Shape)
	}
	if !resp.Masks[0].IsBest || resp.Masks[1].IsBest {
		t.Error("first mask should be best")
	}
	if resp.BestScore != 0.95 {
		t.Errorf("best_score: got %f", resp.BestScore)
	}
	if resp.Masks[0].Area != 4800 {
		t.Errorf("area: got %d, want 4800", resp.Masks[0].Area)
	}
	if c := resp.Masks[0].Center; c == nil || c.X != 80 || c.Y != 60 {
		t.Errorf("center: got %+v, want (80,60)", c)
	}
	if len(resp.BestMask) != 150 || len(resp.BestMask[0]) != 200 || resp.BestMask[60][80] != 255 {
		t.Error("best_mask should be a 0/255 grid of the image size")
	}
	if resp.Best == nil || resp.Best.Area() != 4800 {
		t.Error("Best mask not exposed")
	}
	if len(resp.Masks[1].Flags) == 0 || resp.Masks[1].Flags[0] != "whole_image_mask" {
		t.Errorf("second mask flags: got %v", resp.Masks[1].Flags)
	}
}

func TestPredictor_LabelsDefaultToPositive(t *testing.T) {
	oracle := rectOracle(image.Rect(40, 30, 120, 90))
	p, session := newTestPredictor(t, oracle)

	resp := p.Predict(context.Background(), session, PredictRequest{Points: [][]int{{80, 60}, {10, 10}}})
	if !resp.Success {
		t.Fatalf("prediction failed: %s", resp.Message)
	}
	for _, pr := range oracle.queries[0].Prompts {
		if !pr.Positive {
			t.Errorf("prompt %v should default to positive", pr.Point)
		}
	}
}

func TestPredictor_Enhance(t *testing.T) {
	oracle := rectOracle(image.Rect(40, 30, 120, 90))
	p, session := newTestPredictor(t, oracle)

	plain := p.Predict(context.Background(), session, PredictRequest{Points: [][]int{{80, 60}}})
	enhanced := p.Predict(context.Background(), session, PredictRequest{Points: [][]int{{80, 60}}, Enhance: true})

	if plain.Prompts != 1 {
		t.Errorf("plain prompts: got %d, want 1", plain.Prompts)
	}
	if enhanced.Prompts != 5 {
		t.Errorf("enhanced prompts: got %d, want 5", enhanced.Prompts)
	}
	if got := len(oracle.queries[1].Prompts); got != 5 {
		t.Errorf("oracle saw %d prompts, want 5", got)
	}
}

func TestPredictor_InputErrors(t *testing.T) {
	p, session := newTestPredictor(t, rectOracle(image.Rect(0, 0, 10, 10)))

	tests := []struct {
		name string
		req  PredictRequest
	}{
		{"empty", PredictRequest{}},
		{"point outside", PredictRequest{Points: [][]int{{500, 10}}}},
		{"point arity", PredictRequest{Points: [][]int{{1, 2, 3}}}},
		{"label count", PredictRequest{Points: [][]int{{1, 2}}, PointLabels: []int{1, 0}}},
		{"label value", PredictRequest{Points: [][]int{{1, 2}}, PointLabels: []int{2}}},
		{"box arity", PredictRequest{Boxes: [][]int{{1, 2, 3}}}},
		{"inverted box", PredictRequest{Boxes: [][]int{{50, 50, 10, 10}}}},
		{"box outside", PredictRequest{Boxes: [][]int{{10, 10, 300, 100}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := p.Predict(context.Background(), session, tt.req)
			if resp.Success {
				t.Fatal("expected failure")
			}
			if !diag.IsInput(resp.Err) {
				t.Errorf("expected InputError, got %v", resp.Err)
			}
			if resp.Message == "" {
				t.Error("failure must carry a message")
			}
		})
	}

	resp := p.Predict(context.Background(), "missing.png", PredictRequest{Points: [][]int{{1, 1}}})
	if resp.Success {
		t.Error("unknown session should fail")
	}
}

func TestPredictor_BoxOnly(t *testing.T) {
	oracle := rectOracle(image.Rect(40, 30, 120, 90))
	p, session := newTestPredictor(t, oracle)

	resp := p.Predict(context.Background(), session, PredictRequest{Boxes: [][]int{{40, 30, 120, 90}}})
	if !resp.Success {
		t.Fatalf("prediction failed: %s", resp.Message)
	}
	if got := oracle.queries[0].Boxes; len(got) != 1 || got[0] != image.Rect(40, 30, 120, 90) {
		t.Errorf("boxes passed to oracle: %v", got)
	}
}

func TestPredictor_OracleErrors(t *testing.T) {
	tests := []struct {
		name   string
		answer func(q Query) (Candidates, error)
	}{
		{"transport", func(q Query) (Candidates, error) { return nil, errors.New("connection refused") }},
		{"no candidates", func(q Query) (Candidates, error) { return Candidates{}, nil }},
		{"wrong shape", func(q Query) (Candidates, error) {
			return Candidates{{Mask: imaging.NewMask(10, 10), Score: 0.9}}, nil
		}},
		{"bad score", func(q Query) (Candidates, error) {
			return Candidates{{Mask: imaging.NewMask(q.Image.Width(), q.Image.Height()), Score: 3}}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, session := newTestPredictor(t, &fakeOracle{answer: tt.answer})
			resp := p.Predict(context.Background(), session, PredictRequest{Points: [][]int{{80, 60}}})
			if resp.Success {
				t.Fatal("expected failure")
			}
			if !diag.IsOracle(resp.Err) {
				t.Errorf("expected OracleError, got %v", resp.Err)
			}
			if resp.Masks != nil || resp.BestMask != nil {
				t.Error("failed prediction must not carry masks")
			}
		})
	}

	p, session := newTestPredictor(t, nil)
	if resp := p.Predict(context.Background(), session, PredictRequest{Points: [][]int{{80, 60}}}); !diag.IsOracle(resp.Err) {
		t.Errorf("no oracle: expected OracleError, got %v", resp.Err)
	}
}

func TestPredictor_ConcurrentSessions(t *testing.T) {
	cache := imaging.NewImageCache()
	for i := 0; i < 4; i++ {
		img := createInMemoryImage(60+i*10, 50, color.White)
		cache.Put(fmt.Sprintf("plan-%d.png", i), toRaster(t, img))
	}
	oracle := &fakeOracle{answer: func(q Query) (Candidates, error) {
		w, h := q.Image.Width(), q.Image.Height()
		return Candidates{{Mask: createRectMask(w, h, 0, 0, w/2, h), Score: 0.8}}, nil
	}}
	p := NewPredictor(oracle, cache, DefaultPredictorOptions())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				resp := p.Predict(context.Background(), fmt.Sprintf("plan-%d.png", i), PredictRequest{Points: [][]int{{1, 1}}})
				if !resp.Success {
					t.Errorf("plan %d: %s", i, resp.Message)
					return
				}
				if resp.Shape[1] != 60+i*10 {
					t.Errorf("plan %d: got width %d, want %d", i, resp.Shape[1], 60+i*10)
				}
			}(i)
		}
	}
	wg.Wait()
}

func TestPredictResponse_JSON(t *testing.T) {
	store := image.Rect(40, 30, 120, 90)
	zeroScore := &fakeOracle{answer: func(q Query) (Candidates, error) {
		w, h := q.Image.Width(), q.Image.Height()
		return Candidates{{Mask: createRectMask(w, h, store.Min.X, store.Min.Y, store.Max.X, store.Max.Y), Score: 0}}, nil
	}}

	tests := []struct {
		name     string
		oracle   Oracle
		req      PredictRequest
		success  bool
		wantKeys []string
	}{
		{
			name:     "zero score success keeps result fields",
			oracle:   zeroScore,
			req:      PredictRequest{Points: [][]int{{80, 60}}},
			success:  true,
			wantKeys: []string{"success", "message", "masks", "best_mask", "best_score", "shape", "num_masks"},
		},
		{
			name:     "failure is success and message only",
			oracle:   zeroScore,
			req:      PredictRequest{},
			success:  false,
			wantKeys: []string{"success", "message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, session := newTestPredictor(t, tt.oracle)
			resp := p.Predict(context.Background(), session, tt.req)
			if resp.Success != tt.success {
				t.Fatalf("success: got %v (%s)", resp.Success, resp.Message)
			}

			b, err := json.Marshal(resp)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(b, &fields); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			for _, k := range tt.wantKeys {
				if _, ok := fields[k]; !ok {
					t.Errorf("missing %q in %s", k, b)
				}
			}
			if !tt.success && len(fields) != 2 {
				t.Errorf("failure should have 2 fields, got %d: %s", len(fields), b)
			}
			if tt.success && string(fields["best_score"]) != "0" {
				t.Errorf("best_score: got %s, want 0", fields["best_score"])
			}
		})
	}
}
