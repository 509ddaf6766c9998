package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes processed documents, their artifacts and
// persisted results.
type DocumentService struct {
	catalog  driven.DocumentCatalog
	results  driven.ResultStore
	exporter driven.ResultExporter
}

// NewDocumentService creates a document service. The exporter may be nil,
// in which case Export is unavailable.
func NewDocumentService(
	catalog driven.DocumentCatalog,
	results driven.ResultStore,
	exporter driven.ResultExporter,
) *DocumentService {
	return &DocumentService{
		catalog:  catalog,
		results:  results,
		exporter: exporter,
	}
}

// List returns every processed document, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	return s.catalog.ListDocuments(ctx)
}

// Get retrieves a document record.
func (s *DocumentService) Get(ctx context.Context, docID string) (*domain.DocumentRecord, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.catalog.GetDocument(ctx, docID)
}

// Metadata loads the page records of a document.
func (s *DocumentService) Metadata(ctx context.Context, docID string) (*domain.DocumentMetadata, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.results.LoadMetadata(ctx, docID)
}

// Classification loads the last classification of a document.
func (s *DocumentService) Classification(ctx context.Context, docID string) (*domain.ClassificationResult, error) {
	if docID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.results.LoadClassification(ctx, docID)
}

// Results lists persisted query results, newest first.
func (s *DocumentService) Results(ctx context.Context, docID string) ([]domain.ResultRecord, error) {
	return s.catalog.ListResults(ctx, docID)
}

// Export writes the persisted results to w, oldest first, and returns
// the number of rows written. Artifacts deleted from disk are skipped.
func (s *DocumentService) Export(ctx context.Context, docID string, w io.Writer) (int, error) {
	if s.exporter == nil {
		return 0, fmt.Errorf("%w: no result exporter configured", domain.ErrInvalidConfiguration)
	}

	records, err := s.catalog.ListResults(ctx, docID)
	if err != nil {
		return 0, err
	}
	slices.Reverse(records)

	results := make([]domain.FinalResult, 0, len(records))
	for _, rec := range records {
		res, err := s.results.LoadResult(ctx, rec.Path)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Skipping missing result artifact %s", rec.Path)
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", rec.Path, err)
		}
		results = append(results, *res)
	}

	if err := s.exporter.Export(ctx, results, w); err != nil {
		return 0, err
	}
	return len(results), nil
}
