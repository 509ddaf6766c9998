package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// pathResultStore serves results by artifact path.
type pathResultStore struct {
	*mockResultStore
	byPath map[string]*domain.FinalResult
}

func (p *pathResultStore) LoadResult(_ context.Context, path string) (*domain.FinalResult, error) {
	r, ok := p.byPath[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// captureExporter records what it was asked to export.
type captureExporter struct {
	got []domain.FinalResult
	err error
}

func (c *captureExporter) Export(_ context.Context, results []domain.FinalResult, w io.Writer) error {
	c.got = results
	if c.err != nil {
		return c.err
	}
	_, err := io.WriteString(w, "exported")
	return err
}

func (c *captureExporter) Extension() string { return ".test" }

func newDocumentFixture(t *testing.T) (*DocumentService, *mockCatalog, *pathResultStore, *captureExporter) {
	t.Helper()
	cat := newMockCatalog()
	store := &pathResultStore{mockResultStore: newMockResultStore(), byPath: map[string]*domain.FinalResult{}}
	exp := &captureExporter{}
	return NewDocumentService(cat, store, exp), cat, store, exp
}

func TestDocumentService_GetAndList(t *testing.T) {
	svc, cat, _, _ := newDocumentFixture(t)
	ctx := context.Background()
	require.NoError(t, cat.SaveDocument(ctx, domain.DocumentRecord{ID: "doc-1", Filename: "claim.pdf", PageCount: 2}))

	doc, err := svc.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "claim.pdf", doc.Filename)

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Artifacts(t *testing.T) {
	svc, _, store, _ := newDocumentFixture(t)
	ctx := context.Background()
	store.metadata["doc-1"] = &domain.DocumentMetadata{ID: "doc-1", Filename: "a.pdf"}
	store.classifications["doc-1"] = &domain.ClassificationResult{DocumentID: "doc-1", DocumentType: "Invoice"}

	meta, err := svc.Metadata(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", meta.Filename)

	cls, err := svc.Classification(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Invoice", cls.DocumentType)

	_, err = svc.Classification(ctx, "doc-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Metadata(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Export(t *testing.T) {
	svc, cat, store, exp := newDocumentFixture(t)
	ctx := context.Background()

	// Catalogs list newest first; record in that order.
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, q := range []string{"gone", "second", "first"} {
		path := "results/" + q + ".json"
		require.NoError(t, cat.RecordResult(ctx, domain.ResultRecord{
			DocumentID: "doc-1", Query: q, Path: path, CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}))
		if q != "gone" {
			store.byPath[path] = &domain.FinalResult{Query: q}
		}
	}

	var buf bytes.Buffer
	n, err := svc.Export(ctx, "doc-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "exported", buf.String())
	require.Len(t, exp.got, 2)
	assert.Equal(t, "first", exp.got[0].Query)
	assert.Equal(t, "second", exp.got[1].Query)
}

func TestDocumentService_ExportErrors(t *testing.T) {
	ctx := context.Background()

	noExporter := NewDocumentService(newMockCatalog(), newMockResultStore(), nil)
	_, err := noExporter.Export(ctx, "", io.Discard)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	svc, _, _, exp := newDocumentFixture(t)
	exp.err = errors.New("disk full")
	_, err = svc.Export(ctx, "", io.Discard)
	assert.EqualError(t, err, "disk full")
}
