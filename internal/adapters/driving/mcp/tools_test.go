package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

func newTestServer(t *testing.T, pipeline *mockPipelineService, docs *mockDocumentService) *Server {
	t.Helper()
	ports := &Ports{Pipeline: pipeline}
	if docs != nil {
		ports.Document = docs
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleProcess(t *testing.T) {
	ctx := context.Background()
	pipeline := &mockPipelineService{
		meta:           &domain.DocumentMetadata{ID: "doc-1", Filename: "claim.pdf", PageCount: 3},
		classification: &domain.ClassificationResult{DocumentType: "Claim Form", ConfidenceScore: 0.7},
	}
	server := newTestServer(t, pipeline, nil)

	t.Run("processes and classifies", func(t *testing.T) {
		_, out, err := server.handleProcess(ctx, nil, ProcessInput{Path: "/in/claim.pdf", Classify: true})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", out.DocumentID)
		assert.Equal(t, 3, out.PageCount)
		require.NotNil(t, out.Classification)
		assert.Equal(t, "Claim Form", out.Classification.DocumentType)
	})

	t.Run("without classification", func(t *testing.T) {
		_, out, err := server.handleProcess(ctx, nil, ProcessInput{Path: "/in/claim.pdf"})
		require.NoError(t, err)
		assert.Nil(t, out.Classification)
	})

	t.Run("path required", func(t *testing.T) {
		_, _, err := server.handleProcess(ctx, nil, ProcessInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("pipeline error", func(t *testing.T) {
		failing := newTestServer(t, &mockPipelineService{err: domain.ErrUnsupportedDocument}, nil)
		_, _, err := failing.handleProcess(ctx, nil, ProcessInput{Path: "/in/x.pdf"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
	})
}

func TestServer_handleClassify(t *testing.T) {
	pipeline := &mockPipelineService{classification: &domain.ClassificationResult{
		DocumentType:    "Invoice",
		ConfidenceScore: 0.5,
		Probabilities:   map[string]float64{"Invoice": 0.8, "Claim Form": 0.2},
	}}
	server := newTestServer(t, pipeline, nil)

	_, out, err := server.handleClassify(context.Background(), nil, ClassifyInput{DocumentID: "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, "Invoice", out.Classification.DocumentType)
	assert.Contains(t, out.Report, "Document type: Invoice")
}

func TestServer_handleQuery(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pipeline := &mockPipelineService{result: &domain.FinalResult{
		Query:      "invoice number?",
		DocumentID: "doc-1",
		StructuredData: domain.StructuredData{
			Fields:           map[string]string{"Invoice_Number": "INV-9"},
			VisualElements:   []string{"Table structure detected"},
			ConsistencyCheck: true,
		},
		Evidence:        domain.EvidenceSet{Pages: []int{2}, Images: []string{"/data/images/doc-1_page_2.png"}},
		Summary:         "Invoice INV-9 was identified.",
		ConfidenceScore: 0.93,
		Timestamp:       ts,
	}}
	server := newTestServer(t, pipeline, nil)

	_, out, err := server.handleQuery(context.Background(), nil, QueryInput{
		Query: "invoice number?", DocumentID: "doc-1", TopKText: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, "invoice number?", pipeline.lastQuery)
	assert.Equal(t, "doc-1", pipeline.lastOpts.DocumentID)
	assert.Equal(t, 7, pipeline.lastOpts.TopKText)

	assert.Equal(t, "INV-9", out.Fields["Invoice_Number"])
	assert.Equal(t, []int{2}, out.EvidencePages)
	assert.Equal(t, []string{"/data/images/doc-1_page_2.png"}, out.EvidenceImages)
	assert.True(t, out.ConsistencyCheck)
	assert.Equal(t, "2024-06-01T12:00:00Z", out.Timestamp)

	failing := newTestServer(t, &mockPipelineService{err: domain.ErrIndexNotLoaded}, nil)
	_, _, err = failing.handleQuery(context.Background(), nil, QueryInput{Query: "x"})
	assert.ErrorIs(t, err, domain.ErrIndexNotLoaded)
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()

	t.Run("without document service", func(t *testing.T) {
		server := newTestServer(t, &mockPipelineService{}, nil)
		_, out, err := server.handleList(ctx, nil, ListInput{})
		require.NoError(t, err)
		assert.Zero(t, out.Count)
		assert.NotNil(t, out.Documents)
	})

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{docs: []domain.DocumentRecord{
			{ID: "doc-2", Filename: "b.pdf", PageCount: 1, DocumentType: "Invoice", Confidence: 0.6},
			{ID: "doc-1", Filename: "a.pdf", PageCount: 4},
		}}
		server := newTestServer(t, &mockPipelineService{}, docs)

		_, out, err := server.handleList(ctx, nil, ListInput{})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Count)
		assert.Equal(t, "Invoice", out.Documents[0].DocumentType)
		assert.Equal(t, "a.pdf", out.Documents[1].Filename)
	})

	t.Run("error", func(t *testing.T) {
		server := newTestServer(t, &mockPipelineService{}, &mockDocumentService{err: errors.New("db locked")})
		_, _, err := server.handleList(ctx, nil, ListInput{})
		assert.ErrorContains(t, err, "db locked")
	})
}
