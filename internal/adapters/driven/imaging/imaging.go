// Package imaging reads page images: dimensions for the visual pass and
// grayscale thumbnails for the local image embedder.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"os"

	// Decoders for the formats a page image may arrive in.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.ImageInspector = (*Inspector)(nil)

// Inspector reads image headers without decoding pixel data.
type Inspector struct{}

// NewInspector creates an image inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Dimensions returns the pixel width and height of the image at path.
func (i *Inspector) Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s header: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s image %s has no pixels", format, path)
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail decodes the image at path and scales it to a w x h grayscale
// grid. Values are in [0,1], row-major.
func Thumbnail(path string, w, h int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := make([]float32, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, float32(dst.GrayAt(x, y).Y)/float32(color.White.Y))
		}
	}
	return out, nil
}
