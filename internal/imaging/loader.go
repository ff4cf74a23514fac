package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/clone"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/floorplan-mcp/internal/diag"
)

// Raster is an immutable RGB floor-plan image.
//
// The decoded source is normalized once to *image.RGBA so every pipeline stage
// reads pixels through the same fast path regardless of the file's color
// model. Coordinates are 0-based with the origin at the top-left corner,
// independent of the source image's bounds offset.
type Raster struct {
	rgba   *image.RGBA
	width  int
	height int
}

// NewRaster wraps a decoded image. A zero-size image is an input error.
func NewRaster(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, diag.Inputf("raster", "nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, diag.Inputf("raster", "zero-size image %dx%d", b.Dx(), b.Dy())
	}
	rgba := clone.AsRGBA(img)
	// Rebase to a zero origin; the clone is ours so its Rect can be shifted
	// without touching the pixel layout.
	rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	return &Raster{
		rgba:   rgba,
		width:  b.Dx(),
		height: b.Dy(),
	}, nil
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.height }

// Pixels returns the total pixel count.
func (r *Raster) Pixels() int { return r.width * r.height }

// In reports whether (x, y) lies inside the raster.
func (r *Raster) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.width && y < r.height
}

// At returns the RGB triple at (x, y). The caller must check bounds with In.
func (r *Raster) At(x, y int) RGB {
	i := r.rgba.PixOffset(x, y)
	p := r.rgba.Pix[i : i+3 : i+3]
	return RGB{R: p[0], G: p[1], B: p[2]}
}

// Image exposes the normalized pixels as a read-only image.Image.
// Callers must not type-assert and mutate it.
func (r *Raster) Image() image.Image { return r.rgba }

// ImageCache holds decoded floor plans keyed by file path.
//
// The path is the session handle: every pipeline call names the image it works
// on, so concurrent requests against different floor plans never share
// ambient "current image" state. Entries are immutable once loaded.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		rasters: make(map[string]*Raster),
	}
}

// Load retrieves a raster from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. The raster is
// cached using the exact path string provided.
func (c *ImageCache) Load(path string) (*Raster, error) {
	if path == "" {
		return nil, diag.Inputf("load", "empty image path")
	}

	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	r, err := NewRaster(img)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Another goroutine may have won the race; keep the first entry so every
	// caller observes the same *Raster for a path.
	if existing, ok := c.rasters[path]; ok {
		r = existing
	} else {
		c.rasters[path] = r
	}
	c.mu.Unlock()

	return r, nil
}

// Put registers an already-decoded raster under a session key.
func (c *ImageCache) Put(key string, r *Raster) {
	c.mu.Lock()
	c.rasters[key] = r
	c.mu.Unlock()
}

// Paths lists the cached session keys in sorted order.
func (c *ImageCache) Paths() []string {
	c.mu.RLock()
	paths := make([]string, 0, len(c.rasters))
	for p := range c.rasters {
		paths = append(paths, p)
	}
	c.mu.RUnlock()
	sort.Strings(paths)
	return paths
}

// Clear removes all rasters from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded floor plan.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	r, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         r.Width(),
		Height:        r.Height(),
		Format:        formatFromExt(path),
		FileSizeBytes: stat.Size(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}
