package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// DocumentService exposes processed documents and their artifacts.
type DocumentService interface {
	// List returns every processed document, newest first.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	// Get retrieves a catalog record by document ID.
	Get(ctx context.Context, docID string) (*domain.DocumentRecord, error)

	// Metadata loads the page records of a document.
	Metadata(ctx context.Context, docID string) (*domain.DocumentMetadata, error)

	// Classification loads the last classification of a document.
	Classification(ctx context.Context, docID string) (*domain.ClassificationResult, error)

	// Results lists persisted query results. Empty docID lists all.
	Results(ctx context.Context, docID string) ([]domain.ResultRecord, error)

	// Export writes persisted results to w. Empty docID exports all.
	Export(ctx context.Context, docID string, w io.Writer) (int, error)
}
