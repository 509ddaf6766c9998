package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testDocument(id string, processedAt time.Time) domain.DocumentRecord {
	return domain.DocumentRecord{
		ID:           id,
		Filename:     id + ".pdf",
		PageCount:    3,
		MetadataPath: "/data/metadata/" + id + ".json",
		ProcessedAt:  processedAt,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store := setupTestStore(t)

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Catalog().SaveDocument(ctx, testDocument("d1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.Catalog().GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1.pdf", doc.Filename)
}

func TestCatalog_SaveAndGetDocument(t *testing.T) {
	catalog := setupTestStore(t).Catalog()
	ctx := context.Background()
	processed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, catalog.SaveDocument(ctx, testDocument("d1", processed)))

	doc, err := catalog.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, "/data/metadata/d1.json", doc.MetadataPath)
	assert.True(t, processed.Equal(doc.ProcessedAt))
	assert.Empty(t, doc.DocumentType)
	assert.Nil(t, doc.ClassifiedAt)
}

func TestCatalog_GetDocumentNotFound(t *testing.T) {
	catalog := setupTestStore(t).Catalog()

	_, err := catalog.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_ListDocumentsNewestFirst(t *testing.T) {
	catalog := setupTestStore(t).Catalog()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, catalog.SaveDocument(ctx, testDocument("old", base)))
	require.NoError(t, catalog.SaveDocument(ctx, testDocument("new", base.Add(time.Hour))))

	docs, err := catalog.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
}

func TestCatalog_RecordClassification(t *testing.T) {
	catalog := setupTestStore(t).Catalog()
	ctx := context.Background()
	require.NoError(t, catalog.SaveDocument(ctx, testDocument("d1", time.Now())))

	result := &domain.ClassificationResult{DocumentType: "Claim Form", ConfidenceScore: 0.61}
	require.NoError(t, catalog.RecordClassification(ctx, "d1", result))

	doc, err := catalog.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Claim Form", doc.DocumentType)
	assert.InDelta(t, 0.61, doc.Confidence, 1e-9)
	require.NotNil(t, doc.ClassifiedAt)

	// Reprocessing keeps the classification.
	require.NoError(t, catalog.SaveDocument(ctx, testDocument("d1", time.Now())))
	doc, err = catalog.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Claim Form", doc.DocumentType)
}

func TestCatalog_RecordClassificationUnknownDocument(t *testing.T) {
	catalog := setupTestStore(t).Catalog()

	err := catalog.RecordClassification(context.Background(), "missing", &domain.ClassificationResult{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_Results(t *testing.T) {
	catalog := setupTestStore(t).Catalog()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []domain.ResultRecord{
		{DocumentID: "d1", Query: "policy number?", Path: "r1.json", Confidence: 0.9, CreatedAt: base},
		{DocumentID: "", Query: "any claims?", Path: "r2.json", Confidence: 0.5, CreatedAt: base.Add(time.Minute)},
		{DocumentID: "d1", Query: "status?", Path: "r3.json", Confidence: 0.7, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		require.NoError(t, catalog.RecordResult(ctx, rec))
	}

	all, err := catalog.ListResults(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "status?", all[0].Query)
	assert.NotZero(t, all[0].ID)

	d1, err := catalog.ListResults(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, d1, 2)
	assert.Equal(t, "r3.json", d1[0].Path)
	assert.Equal(t, "r1.json", d1[1].Path)
}
