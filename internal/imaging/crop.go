package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
)

// PreviewResult contains a cropped floor-plan excerpt encoded as base64 PNG.
type PreviewResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview crops the rectangle (x, y, width, height) from the raster, grown by
// pad pixels on every side and clipped to the image, then scales it.
//
// This lets a reviewer eyeball a detected region's footprint without loading
// the whole plan.
func Preview(r *Raster, x, y, width, height, pad int, scale float64) (*PreviewResult, error) {
	if width <= 0 || height <= 0 {
		return nil, diag.Inputf("preview", "invalid region size %dx%d", width, height)
	}
	if pad < 0 {
		pad = 0
	}

	rect := image.Rect(x-pad, y-pad, x+width+pad, y+height+pad).
		Intersect(image.Rect(0, 0, r.Width(), r.Height()))
	if rect.Empty() {
		return nil, diag.Inputf("preview", "region (%d,%d %dx%d) outside image bounds %dx%d",
			x, y, width, height, r.Width(), r.Height())
	}

	cropped := imaging.Crop(r.Image(), rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		X:           rect.Min.X,
		Y:           rect.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
