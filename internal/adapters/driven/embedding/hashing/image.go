package hashing

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docsight/internal/adapters/driven/imaging"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Ensure ImageEmbeddingService implements the interface.
var _ driven.ImageEmbeddingService = (*ImageEmbeddingService)(nil)

// grid is the side of the grayscale thumbnail folded into each vector.
const grid = 4

// ImageEmbeddingService embeds a page image as a hashed caption followed
// by a grid x grid grayscale thumbnail. Text queries hash into the
// caption part of the same space.
type ImageEmbeddingService struct {
	dimensions int
	captionDir string
}

// ImageOption configures the image embedder.
type ImageOption func(*ImageEmbeddingService)

// WithCaptionDir sets the directory holding "<image base name>.txt"
// captions, typically the OCR text of each page.
func WithCaptionDir(dir string) ImageOption {
	return func(s *ImageEmbeddingService) {
		s.captionDir = dir
	}
}

// NewImageEmbeddingService creates an image embedder. Dimensions below
// the thumbnail size fall back to DefaultImageDimensions.
func NewImageEmbeddingService(dimensions int, opts ...ImageOption) *ImageEmbeddingService {
	if dimensions <= grid*grid {
		dimensions = DefaultImageDimensions
	}
	s := &ImageEmbeddingService{dimensions: dimensions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EmbedImages embeds every image. Unreadable images keep a zero
// thumbnail and are logged, so one bad page never fails the batch.
func (s *ImageEmbeddingService) EmbedImages(ctx context.Context, paths []string) ([][]float32, error) {
	captionDims := s.dimensions - grid*grid
	out := make([][]float32, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vec := make([]float32, s.dimensions)
		hashInto(vec[:captionDims], s.caption(path))

		thumb, err := imaging.Thumbnail(path, grid, grid)
		if err != nil {
			logger.Debug("hashing: no thumbnail for %s: %v", path, err)
		}
		for j, v := range thumb {
			vec[captionDims+j] = v - 0.5
		}

		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

// EmbedQuery embeds a text query into the caption part of the space.
func (s *ImageEmbeddingService) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)
	hashInto(vec[:s.dimensions-grid*grid], text)
	normalize(vec)
	return vec, nil
}

func (s *ImageEmbeddingService) caption(imagePath string) string {
	if s.captionDir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	data, err := os.ReadFile(filepath.Join(s.captionDir, base+".txt"))
	if err != nil {
		return ""
	}
	return string(data)
}

// Dimensions returns the embedding vector size.
func (s *ImageEmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *ImageEmbeddingService) ModelName() string {
	return "hashing-image"
}

// Ping always succeeds.
func (s *ImageEmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *ImageEmbeddingService) Close() error {
	return nil
}
