// Package chunker provides a whitespace-token sliding window chunker.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = 100

// DefaultChunkOverlap is the default number of overlapping tokens.
const DefaultChunkOverlap = 20

// Processor splits page text into overlapping token windows.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. An overlap that is not smaller than the chunk
// size is rejected with domain.ErrInvalidConfiguration.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := domain.ValidateChunking(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process chunks every page of the document. Positions restart at zero
// on each page; pages without text produce no chunks.
func (p *Processor) Process(ctx context.Context, meta *domain.DocumentMetadata) ([]domain.Chunk, error) {
	if meta == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for i := range meta.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := meta.Pages[i]
		windows, err := Chunk(page.Text, p.chunkSize, p.overlap)
		if err != nil {
			return nil, err
		}
		for pos, text := range windows {
			chunks = append(chunks, domain.Chunk{
				ID:         fmt.Sprintf("%s:%d:%d", meta.ID, page.PageID, pos),
				DocumentID: meta.ID,
				PageID:     page.PageID,
				Position:   pos,
				Content:    text,
			})
		}
	}

	return chunks, nil
}

// Chunk splits text into windows of size whitespace-delimited tokens,
// advancing by size-overlap tokens. The trailing partial window is kept.
// Empty text yields an empty slice.
func Chunk(text string, size, overlap int) ([]string, error) {
	if err := domain.ValidateChunking(size, overlap); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}, nil
	}

	step := size - overlap
	chunks := make([]string, 0, len(words)/step+1)
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks, nil
}
