package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// StoreFactory creates an empty vector store of the given dimension.
type StoreFactory func(dim int) driven.VectorStore

// scoredRecord is a record matched by a search, before it is converted
// into a modality-specific hit.
type scoredRecord[T any] struct {
	record T
	rank   int
	score  float64
}

// indexCore keeps a vector store and its metadata list co-indexed by
// insertion position. Both change together under one lock.
type indexCore[T any] struct {
	mu       sync.RWMutex
	prefix   string
	dim      int
	newStore StoreFactory
	store    driven.VectorStore
	records  []T
}

func newIndexCore[T any](prefix string, dim int, newStore StoreFactory) *indexCore[T] {
	return &indexCore[T]{
		prefix:   prefix,
		dim:      dim,
		newStore: newStore,
		store:    newStore(dim),
		records:  []T{},
	}
}

func (c *indexCore[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// append adds a whole batch or nothing.
func (c *indexCore[T]) append(ctx context.Context, vectors [][]float32, records []T) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("%w: %s index got %d vectors for %d items",
			domain.ErrInvalidInput, c.prefix, len(vectors), len(records))
	}
	for i, v := range vectors {
		if len(v) != c.dim {
			return fmt.Errorf("%w: %s vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, c.prefix, i, len(v), c.dim)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Add(ctx, vectors); err != nil {
		return fmt.Errorf("add to %s index: %w", c.prefix, err)
	}
	c.records = append(c.records, records...)
	return nil
}

// truncate rolls the index back to its first n entries.
func (c *indexCore[T]) truncate(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 || n >= len(c.records) {
		return
	}
	c.store.Truncate(n)
	c.records = c.records[:n]
}

// search returns up to k records nearest to query. When keep is set,
// only matching records count towards k and ranks are assigned after
// filtering.
func (c *indexCore[T]) search(ctx context.Context, query []float32, k int, keep func(T) bool) ([]scoredRecord[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.records)
	if k <= 0 || n == 0 {
		return nil, nil
	}
	if len(query) != c.dim {
		return nil, fmt.Errorf("%w: %s query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, c.prefix, len(query), c.dim)
	}

	limit := k
	if keep != nil {
		limit = n
	}
	hits, err := c.store.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %s index: %w", c.prefix, err)
	}

	out := make([]scoredRecord[T], 0, min(k, len(hits)))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= n {
			return nil, fmt.Errorf("%w: %s hit at position %d of %d", domain.ErrCorruptIndex, c.prefix, h.Position, n)
		}
		rec := c.records[h.Position]
		if keep != nil && !keep(rec) {
			continue
		}
		out = append(out, scoredRecord[T]{
			record: rec,
			rank:   len(out) + 1,
			score:  domain.SimilarityFromDistance(h.Distance),
		})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (c *indexCore[T]) paths(dir string) (blob, meta string) {
	return filepath.Join(dir, c.prefix+".index"), filepath.Join(dir, c.prefix+"_metadata.json")
}

// save writes the vector blob and the metadata sidecar.
func (c *indexCore[T]) save(dir string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	blobPath, metaPath := c.paths(dir)
	if err := c.store.Save(blobPath); err != nil {
		return fmt.Errorf("save %s vectors: %w", c.prefix, err)
	}

	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s metadata: %w", c.prefix, err)
	}
	tmp := metaPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s metadata: %w", c.prefix, err)
	}
	if err := os.Rename(tmp, metaPath); err != nil {
		return fmt.Errorf("write %s metadata: %w", c.prefix, err)
	}
	return nil
}

// load replaces the index with the artifacts in dir. The in-memory
// state only changes once both artifacts have been read and agree.
func (c *indexCore[T]) load(dir string) error {
	blobPath, metaPath := c.paths(dir)

	data, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		if _, statErr := os.Stat(blobPath); errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("%s index in %s: %w", c.prefix, dir, domain.ErrNotFound)
		}
		return fmt.Errorf("%w: %s vectors present without metadata", domain.ErrCorruptIndex, c.prefix)
	}
	if err != nil {
		return fmt.Errorf("read %s metadata: %w", c.prefix, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: decode %s metadata: %w", domain.ErrCorruptIndex, c.prefix, err)
	}
	if records == nil {
		records = []T{}
	}

	store := c.newStore(c.dim)
	if err := store.Load(blobPath); err != nil {
		if errors.Is(err, domain.ErrCorruptIndex) {
			return fmt.Errorf("load %s vectors: %w", c.prefix, err)
		}
		return fmt.Errorf("%w: load %s vectors: %w", domain.ErrCorruptIndex, c.prefix, err)
	}
	if store.Dimensions() != c.dim {
		return fmt.Errorf("%w: %s vectors have %d dimensions, embedder has %d",
			domain.ErrCorruptIndex, c.prefix, store.Dimensions(), c.dim)
	}
	if store.Len() != len(records) {
		return fmt.Errorf("%w: %s index has %d vectors but %d metadata records",
			domain.ErrCorruptIndex, c.prefix, store.Len(), len(records))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
	c.records = records
	return nil
}

// TextIndex embeds text chunks and searches them by query text.
type TextIndex struct {
	core     *indexCore[domain.TextRecord]
	embedder driven.EmbeddingService
}

// NewTextIndex creates an empty text index in the embedder's space.
func NewTextIndex(embedder driven.EmbeddingService, newStore StoreFactory) *TextIndex {
	dim := 0
	if embedder != nil {
		dim = embedder.Dimensions()
	}
	return &TextIndex{
		core:     newIndexCore[domain.TextRecord]("text", dim, newStore),
		embedder: embedder,
	}
}

// Add embeds the chunks with one batch call and appends them.
// On any failure nothing is appended. Blank chunks are skipped.
func (x *TextIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, 0, len(chunks))
	records := make([]domain.TextRecord, 0, len(chunks))
	for _, ch := range chunks {
		if isBlank(ch.Content) {
			continue
		}
		texts = append(texts, ch.Content)
		records = append(records, domain.TextRecord{
			DocumentID: ch.DocumentID,
			PageID:     ch.PageID,
			ChunkID:    ch.Position,
			Text:       ch.Content,
		})
	}
	if len(texts) == 0 {
		return nil
	}
	if x.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}
	return x.core.append(ctx, vectors, records)
}

// Search returns up to k chunks nearest to the query.
func (x *TextIndex) Search(ctx context.Context, query string, k int) ([]domain.TextHit, error) {
	return x.SearchDocument(ctx, query, k, "")
}

// SearchDocument is Search restricted to one document when docID is set.
func (x *TextIndex) SearchDocument(ctx context.Context, query string, k int, docID string) ([]domain.TextHit, error) {
	if k <= 0 || x.core.len() == 0 {
		return []domain.TextHit{}, nil
	}
	if x.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var keep func(domain.TextRecord) bool
	if docID != "" {
		keep = func(r domain.TextRecord) bool { return r.DocumentID == docID }
	}
	found, err := x.core.search(ctx, vec, k, keep)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.TextHit, 0, len(found))
	for _, f := range found {
		hits = append(hits, domain.TextHit{Record: f.record, Rank: f.rank, Score: f.score})
	}
	return hits, nil
}

// Len returns the number of indexed chunks.
func (x *TextIndex) Len() int { return x.core.len() }

// Truncate drops every chunk added after the first n.
func (x *TextIndex) Truncate(n int) { x.core.truncate(n) }

// Save writes text.index and text_metadata.json into dir.
func (x *TextIndex) Save(dir string) error { return x.core.save(dir) }

// Load restores the index from dir.
func (x *TextIndex) Load(dir string) error { return x.core.load(dir) }

// ImageIndex embeds page images and searches them by text or image.
type ImageIndex struct {
	core     *indexCore[domain.ImageRecord]
	embedder driven.ImageEmbeddingService
}

// NewImageIndex creates an empty image index in the embedder's space.
func NewImageIndex(embedder driven.ImageEmbeddingService, newStore StoreFactory) *ImageIndex {
	dim := 0
	if embedder != nil {
		dim = embedder.Dimensions()
	}
	return &ImageIndex{
		core:     newIndexCore[domain.ImageRecord]("image", dim, newStore),
		embedder: embedder,
	}
}

// Add embeds the images with one batch call and appends them.
func (x *ImageIndex) Add(ctx context.Context, records []domain.ImageRecord) error {
	if len(records) == 0 {
		return nil
	}
	if x.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	paths := make([]string, len(records))
	for i := range records {
		paths[i] = records[i].ImagePath
	}
	vectors, err := x.embedder.EmbedImages(ctx, paths)
	if err != nil {
		return fmt.Errorf("embed %d images: %w", len(paths), err)
	}
	return x.core.append(ctx, vectors, append([]domain.ImageRecord{}, records...))
}

// Search returns up to k images nearest to a text query.
func (x *ImageIndex) Search(ctx context.Context, query string, k int) ([]domain.ImageHit, error) {
	return x.SearchDocument(ctx, query, k, "")
}

// SearchDocument is Search restricted to one document when docID is set.
func (x *ImageIndex) SearchDocument(ctx context.Context, query string, k int, docID string) ([]domain.ImageHit, error) {
	if k <= 0 || x.core.len() == 0 {
		return []domain.ImageHit{}, nil
	}
	if x.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := x.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return x.searchVector(ctx, vec, k, docID)
}

// SearchByImage returns up to k images nearest to the image at path.
func (x *ImageIndex) SearchByImage(ctx context.Context, path string, k int) ([]domain.ImageHit, error) {
	if k <= 0 || x.core.len() == 0 {
		return []domain.ImageHit{}, nil
	}
	if x.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vectors, err := x.embedder.EmbedImages(ctx, []string{path})
	if err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected one image vector, got %d", domain.ErrInvalidInput, len(vectors))
	}
	return x.searchVector(ctx, vectors[0], k, "")
}

func (x *ImageIndex) searchVector(ctx context.Context, vec []float32, k int, docID string) ([]domain.ImageHit, error) {
	var keep func(domain.ImageRecord) bool
	if docID != "" {
		keep = func(r domain.ImageRecord) bool { return r.DocumentID == docID }
	}
	found, err := x.core.search(ctx, vec, k, keep)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.ImageHit, 0, len(found))
	for _, f := range found {
		hits = append(hits, domain.ImageHit{Record: f.record, Rank: f.rank, Score: f.score})
	}
	return hits, nil
}

// Len returns the number of indexed images.
func (x *ImageIndex) Len() int { return x.core.len() }

// Truncate drops every image added after the first n.
func (x *ImageIndex) Truncate(n int) { x.core.truncate(n) }

// Save writes image.index and image_metadata.json into dir.
func (x *ImageIndex) Save(dir string) error { return x.core.save(dir) }

// Load restores the index from dir.
func (x *ImageIndex) Load(dir string) error { return x.core.load(dir) }
