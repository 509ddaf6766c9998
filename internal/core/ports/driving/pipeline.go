package driving

import (
	"context"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// QueryOptions narrows a query.
type QueryOptions struct {
	// DocumentID restricts retrieval to one document. Empty searches all.
	DocumentID string

	// TopKText and TopKImage override the configured retrieval counts
	// when positive.
	TopKText  int
	TopKImage int
}

// PipelineService runs documents through preprocessing, indexing,
// classification and query answering.
type PipelineService interface {
	// ProcessDocument renders, OCRs, chunks and indexes a PDF.
	ProcessDocument(ctx context.Context, pdfPath string) (*domain.DocumentMetadata, error)

	// ClassifyDocument classifies a processed document and persists the result.
	ClassifyDocument(ctx context.Context, docID string) (*domain.ClassificationResult, error)

	// Query answers a question from the indexed evidence and persists the result.
	Query(ctx context.Context, query string, opts QueryOptions) (*domain.FinalResult, error)

	// LoadIndices restores persisted indices. Missing indices are not an error.
	LoadIndices(ctx context.Context) error
}
