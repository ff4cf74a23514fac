package imaging

import (
	"image"
	"testing"
)

func TestFloodFill(t *testing.T) {
	m := MaskFromRows([][]uint8{
		{1, 1, 0, 0, 0},
		{1, 1, 0, 1, 1},
		{0, 0, 1, 1, 1},
		{0, 0, 0, 0, 0},
	})

	tests := []struct {
		name     string
		seed     image.Point
		conn     Connectivity
		wantArea int
	}{
		{"4-connected top-left blob", image.Pt(0, 0), Conn4, 4},
		{"8-connected joins diagonal", image.Pt(0, 0), Conn8, 9},
		{"4-connected right blob", image.Pt(4, 2), Conn4, 5},
		{"seed on background", image.Pt(4, 3), Conn8, 0},
		{"seed outside grid", image.Pt(-1, 0), Conn8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FloodFill(m, tt.seed, tt.conn)
			if got.Area() != tt.wantArea {
				t.Errorf("area: got %d, want %d", got.Area(), tt.wantArea)
			}
			if !subset(got, m) {
				t.Error("fill escaped the source mask")
			}
		})
	}
}

func TestFloodFill_LargeBlob(t *testing.T) {
	m := rectMask(400, 400, 0, 0, 400, 400)

	got := FloodFill(m, image.Pt(200, 200), Conn4)

	if got.Area() != 160000 {
		t.Errorf("area: got %d, want 160000", got.Area())
	}
}
