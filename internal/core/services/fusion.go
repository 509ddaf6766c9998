package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// Fusion merges text and image hits into one evidence context.
// It never filters or rescores hits.
type Fusion struct {
	weights domain.FusionWeights
}

// NewFusion creates a fusion stage carrying the configured weights.
func NewFusion(alpha, beta float64) *Fusion {
	return &Fusion{weights: domain.FusionWeights{Text: alpha, Image: beta}}
}

// Fuse builds the evidence context for a query.
func (f *Fusion) Fuse(query string, textHits []domain.TextHit, imageHits []domain.ImageHit) domain.EvidenceContext {
	texts := make([]string, 0, len(textHits))
	for i, h := range textHits {
		rank := h.Rank
		if rank == 0 {
			rank = i + 1
		}
		texts = append(texts, fmt.Sprintf("[Text Chunk %d, Score: %.3f]\n%s", rank, h.Score, h.Record.Text))
	}

	images := make([]string, 0, len(imageHits))
	for _, h := range imageHits {
		images = append(images, fmt.Sprintf("[Image Page %d, Score: %.3f] Path: %s", h.Record.PageID, h.Score, h.Record.ImagePath))
	}

	return domain.EvidenceContext{
		Query:        query,
		TextHits:     append([]domain.TextHit{}, textHits...),
		ImageHits:    append([]domain.ImageHit{}, imageHits...),
		TextContext:  strings.Join(texts, "\n\n"),
		ImageContext: strings.Join(images, "\n"),
		Weights:      f.weights,
	}
}

// isContextHeader reports whether a line is a chunk header written by Fuse.
func isContextHeader(line string) bool {
	return strings.HasPrefix(line, "[Text Chunk ")
}
