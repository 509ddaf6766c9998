package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
)

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	meta           *domain.DocumentMetadata
	classification *domain.ClassificationResult
	result         *domain.FinalResult
	err            error

	lastQuery string
	lastOpts  driving.QueryOptions
}

func (m *mockPipelineService) ProcessDocument(_ context.Context, _ string) (*domain.DocumentMetadata, error) {
	return m.meta, m.err
}

func (m *mockPipelineService) ClassifyDocument(_ context.Context, _ string) (*domain.ClassificationResult, error) {
	return m.classification, m.err
}

func (m *mockPipelineService) Query(_ context.Context, q string, opts driving.QueryOptions) (*domain.FinalResult, error) {
	m.lastQuery = q
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockPipelineService) LoadIndices(context.Context) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs           []domain.DocumentRecord
	meta           *domain.DocumentMetadata
	classification *domain.ClassificationResult
	err            error
}

func (m *mockDocumentService) List(context.Context) ([]domain.DocumentRecord, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(context.Context, string) (*domain.DocumentRecord, error) {
	if len(m.docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.docs[0], m.err
}

func (m *mockDocumentService) Metadata(context.Context, string) (*domain.DocumentMetadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.meta == nil {
		return nil, domain.ErrNotFound
	}
	return m.meta, nil
}

func (m *mockDocumentService) Classification(context.Context, string) (*domain.ClassificationResult, error) {
	if m.classification == nil {
		return nil, domain.ErrNotFound
	}
	return m.classification, nil
}

func (m *mockDocumentService) Results(context.Context, string) ([]domain.ResultRecord, error) {
	return nil, m.err
}

func (m *mockDocumentService) Export(context.Context, string, io.Writer) (int, error) {
	return 0, m.err
}
