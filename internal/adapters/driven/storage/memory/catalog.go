package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.DocumentCatalog = (*Catalog)(nil)

// Catalog is an in-memory implementation of driven.DocumentCatalog.
// It backs one-shot runs that do not keep a sqlite catalog.
type Catalog struct {
	mu        sync.RWMutex
	documents map[string]domain.DocumentRecord
	results   []domain.ResultRecord
}

// NewCatalog creates a new in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		documents: make(map[string]domain.DocumentRecord),
	}
}

// SaveDocument stores or updates a document record.
func (c *Catalog) SaveDocument(_ context.Context, doc domain.DocumentRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[doc.ID] = doc
	return nil
}

// GetDocument retrieves a document record by ID.
func (c *Catalog) GetDocument(_ context.Context, id string) (*domain.DocumentRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns every document, newest first.
func (c *Catalog) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]domain.DocumentRecord, 0, len(c.documents))
	for _, doc := range c.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].ProcessedAt.Equal(docs[j].ProcessedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].ProcessedAt.After(docs[j].ProcessedAt)
	})
	return docs, nil
}

// RecordClassification stores the document type of a document.
func (c *Catalog) RecordClassification(_ context.Context, docID string, result *domain.ClassificationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.documents[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.DocumentType = result.DocumentType
	doc.Confidence = result.ConfidenceScore
	now := time.Now()
	doc.ClassifiedAt = &now
	c.documents[docID] = doc
	return nil
}

// RecordResult registers a persisted query result.
func (c *Catalog) RecordResult(_ context.Context, rec domain.ResultRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.ID = int64(len(c.results) + 1)
	c.results = append(c.results, rec)
	return nil
}

// ListResults returns results, newest first. Empty docID lists all.
func (c *Catalog) ListResults(_ context.Context, docID string) ([]domain.ResultRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ResultRecord, 0, len(c.results))
	for i := len(c.results) - 1; i >= 0; i-- {
		if docID == "" || c.results[i].DocumentID == docID {
			out = append(out, c.results[i])
		}
	}
	return out, nil
}
