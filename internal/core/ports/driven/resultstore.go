package driven

import (
	"context"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// ResultStore persists result artifacts, one JSON file per run.
type ResultStore interface {
	// SaveResult writes a query result and returns the artifact path.
	SaveResult(ctx context.Context, result *domain.FinalResult) (string, error)

	// SaveClassification writes a classification result and returns the artifact path.
	SaveClassification(ctx context.Context, result *domain.ClassificationResult) (string, error)

	// LoadResult reads a query result artifact.
	LoadResult(ctx context.Context, path string) (*domain.FinalResult, error)

	// LoadClassification reads the classification artifact of a document.
	// Returns domain.ErrNotFound when the document was never classified.
	LoadClassification(ctx context.Context, docID string) (*domain.ClassificationResult, error)

	// SaveMetadata writes document metadata and returns the artifact path.
	SaveMetadata(ctx context.Context, meta *domain.DocumentMetadata) (string, error)

	// LoadMetadata reads document metadata.
	// Returns domain.ErrNotFound when the document is unknown.
	LoadMetadata(ctx context.Context, docID string) (*domain.DocumentMetadata, error)
}

// DocumentCatalog is a registry of processed documents and their results.
type DocumentCatalog interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc domain.DocumentRecord) error

	// GetDocument retrieves a document record by ID.
	GetDocument(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// ListDocuments returns every document, newest first.
	ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error)

	// RecordClassification stores the document type of a document.
	RecordClassification(ctx context.Context, docID string, result *domain.ClassificationResult) error

	// RecordResult registers a persisted query result.
	RecordResult(ctx context.Context, rec domain.ResultRecord) error

	// ListResults returns results, newest first. Empty docID lists all.
	ListResults(ctx context.Context, docID string) ([]domain.ResultRecord, error)
}
