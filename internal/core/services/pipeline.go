package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// Index subdirectories under the embeddings dir.
const (
	EmbeddingsSubdir = "embeddings"
	textIndexSubdir  = "text"
	imageIndexSubdir = "image"
)

// Pipeline stage names reported to metrics.
const (
	stagePreprocess  = "preprocess"
	stageIndex       = "index"
	stageClassify    = "classify"
	stageRetrieve    = "retrieve"
	stageExtract     = "extract"
	stageConsistency = "consistency"
	stageVisual      = "visual"
	stageSynthesize  = "synthesize"
)

// PipelineDeps holds the collaborators of a Pipeline.
type PipelineDeps struct {
	Preprocessor *Preprocessor
	Chunker      driven.PostProcessor
	TextIndex    *TextIndex
	ImageIndex   *ImageIndex
	Classifier   *Classifier
	Fusion       *Fusion
	Extractor    *FieldExtractor
	Consistency  *ConsistencyChecker
	Visual       *VisualAnalyzer
	Synthesizer  *Synthesizer

	// Results persists metadata and result artifacts. Required.
	Results driven.ResultStore

	// Catalog registers documents and results. Optional.
	Catalog driven.DocumentCatalog

	// Metrics defaults to driven.NopMetrics.
	Metrics driven.Metrics

	// IndexDir is where both indices are saved, usually <data>/embeddings.
	IndexDir string

	Retrieval domain.RetrievalSettings
}

// Pipeline orchestrates preprocessing, indexing, classification and
// query answering over a shared pair of indices.
type Pipeline struct {
	deps PipelineDeps

	// ingest serialises document ingestion so a failed run can roll the
	// indices back to their previous length.
	ingest sync.Mutex
}

// NewPipeline creates a pipeline from its collaborators.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Metrics == nil {
		deps.Metrics = driven.NopMetrics{}
	}
	return &Pipeline{deps: deps}
}

// TextIndex returns the text index.
func (p *Pipeline) TextIndex() *TextIndex { return p.deps.TextIndex }

// ImageIndex returns the image index.
func (p *Pipeline) ImageIndex() *ImageIndex { return p.deps.ImageIndex }

// ProcessDocument renders, OCRs, chunks and indexes a PDF, then writes its
// metadata, saves both indices and registers the document. On any failure
// after indexing starts, both indices are truncated to their previous
// length in memory and on disk.
func (p *Pipeline) ProcessDocument(ctx context.Context, pdfPath string) (_ *domain.DocumentMetadata, err error) {
	p.ingest.Lock()
	defer p.ingest.Unlock()

	start := time.Now()
	meta, err := p.deps.Preprocessor.Process(ctx, pdfPath, 0)
	p.observe(stagePreprocess, start, err)
	if err != nil {
		return nil, err
	}

	textLen, imageLen := p.deps.TextIndex.Len(), p.deps.ImageIndex.Len()
	defer func() {
		if err != nil {
			p.rollback(textLen, imageLen)
		}
	}()

	start = time.Now()
	err = p.index(ctx, meta)
	p.observe(stageIndex, start, err)
	if err != nil {
		return nil, err
	}

	metaPath, err := p.deps.Results.SaveMetadata(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	if err := p.saveIndices(); err != nil {
		return nil, err
	}

	if p.deps.Catalog != nil {
		rec := domain.DocumentRecord{
			ID:           meta.ID,
			Filename:     meta.Filename,
			PageCount:    meta.PageCount,
			MetadataPath: metaPath,
			ProcessedAt:  meta.CreatedAt,
		}
		if err := p.deps.Catalog.SaveDocument(ctx, rec); err != nil {
			return nil, fmt.Errorf("register document: %w", err)
		}
	}

	p.deps.Metrics.IndexSize(textIndexSubdir, p.deps.TextIndex.Len())
	p.deps.Metrics.IndexSize(imageIndexSubdir, p.deps.ImageIndex.Len())
	p.deps.Metrics.DocumentProcessed(meta.PageCount)
	logger.Info("Processed %s: %d pages, %d text vectors, %d image vectors",
		meta.ID, meta.PageCount, p.deps.TextIndex.Len(), p.deps.ImageIndex.Len())
	return meta, nil
}

// index adds the document's chunks and page images to the in-memory
// indices. Persisting them is left to the caller.
func (p *Pipeline) index(ctx context.Context, meta *domain.DocumentMetadata) error {
	logger.Section("Indexing")

	chunks, err := p.deps.Chunker.Process(ctx, meta)
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("%d chunks from %d pages", len(chunks), meta.PageCount)

	if err := p.deps.TextIndex.Add(ctx, chunks); err != nil {
		return fmt.Errorf("index text: %w", err)
	}

	images := make([]domain.ImageRecord, 0, len(meta.Pages))
	for _, page := range meta.Pages {
		images = append(images, domain.ImageRecord{
			DocumentID: meta.ID,
			PageID:     page.PageID,
			ImagePath:  page.ImagePath,
		})
	}
	if err := p.deps.ImageIndex.Add(ctx, images); err != nil {
		return fmt.Errorf("index images: %w", err)
	}
	return nil
}

// rollback drops everything appended after the given lengths and rewrites
// the saved indices, which may already hold the failed document.
func (p *Pipeline) rollback(textLen, imageLen int) {
	p.deps.TextIndex.Truncate(textLen)
	p.deps.ImageIndex.Truncate(imageLen)
	if err := p.saveIndices(); err != nil {
		logger.Warn("Rolling back indices: %v", err)
	}
}

func (p *Pipeline) saveIndices() error {
	if p.deps.IndexDir == "" {
		return nil
	}
	if err := p.deps.TextIndex.Save(filepath.Join(p.deps.IndexDir, textIndexSubdir)); err != nil {
		return fmt.Errorf("save text index: %w", err)
	}
	if err := p.deps.ImageIndex.Save(filepath.Join(p.deps.IndexDir, imageIndexSubdir)); err != nil {
		return fmt.Errorf("save image index: %w", err)
	}
	return nil
}

// LoadIndices restores both indices from IndexDir. A missing index is
// not an error; a corrupt one is.
func (p *Pipeline) LoadIndices(_ context.Context) error {
	if p.deps.IndexDir == "" {
		return nil
	}

	if err := p.deps.TextIndex.Load(filepath.Join(p.deps.IndexDir, textIndexSubdir)); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("load text index: %w", err)
		}
		logger.Debug("No text index at %s", p.deps.IndexDir)
	}
	if err := p.deps.ImageIndex.Load(filepath.Join(p.deps.IndexDir, imageIndexSubdir)); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("load image index: %w", err)
		}
		logger.Debug("No image index at %s", p.deps.IndexDir)
	}

	p.deps.Metrics.IndexSize(textIndexSubdir, p.deps.TextIndex.Len())
	p.deps.Metrics.IndexSize(imageIndexSubdir, p.deps.ImageIndex.Len())
	logger.Debug("Loaded %d text and %d image vectors", p.deps.TextIndex.Len(), p.deps.ImageIndex.Len())
	return nil
}

// ClassifyDocument classifies a processed document from its chunks and
// persists the result.
func (p *Pipeline) ClassifyDocument(ctx context.Context, docID string) (*domain.ClassificationResult, error) {
	if strings.TrimSpace(docID) == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	meta, err := p.deps.Results.LoadMetadata(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", docID, err)
	}

	start := time.Now()
	result, err := p.classify(ctx, meta)
	p.observe(stageClassify, start, err)
	if err != nil {
		return nil, err
	}

	if _, err := p.deps.Results.SaveClassification(ctx, result); err != nil {
		return nil, fmt.Errorf("save classification: %w", err)
	}
	if p.deps.Catalog != nil {
		if err := p.deps.Catalog.RecordClassification(ctx, docID, result); err != nil {
			return nil, fmt.Errorf("record classification: %w", err)
		}
	}
	return result, nil
}

func (p *Pipeline) classify(ctx context.Context, meta *domain.DocumentMetadata) (*domain.ClassificationResult, error) {
	logger.Section("Classification")

	chunks, err := p.deps.Chunker.Process(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}

	result, err := p.deps.Classifier.Classify(ctx, texts, len(meta.Pages))
	if err != nil {
		return nil, err
	}
	result.DocumentID = meta.ID
	logger.Info("%s classified as %s (%.3f)", meta.ID, result.DocumentType, result.ConfidenceScore)
	return result, nil
}

// Query answers a question from the indexed evidence: retrieval, fusion,
// extraction, the consistency and visual passes, then synthesis.
func (p *Pipeline) Query(ctx context.Context, query string, opts driving.QueryOptions) (*domain.FinalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if p.deps.TextIndex.Len() == 0 && p.deps.ImageIndex.Len() == 0 {
		return nil, domain.ErrIndexNotLoaded
	}

	start := time.Now()
	evidence, err := p.retrieve(ctx, query, opts)
	p.observe(stageRetrieve, start, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	fields, evidenceSet := p.deps.Extractor.Extract(ctx, evidence)
	p.observe(stageExtract, start, nil)
	for _, name := range fields.Names() {
		p.deps.Metrics.FieldExtracted(name, fields.Strategy[name])
	}

	var (
		consistency domain.ConsistencyReport
		visual      domain.VisualReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		consistency = p.deps.Consistency.Analyze(gctx, query, evidence, fields)
		p.observe(stageConsistency, start, nil)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		visual = p.deps.Visual.Analyze(gctx, evidence, fields)
		p.observe(stageVisual, start, nil)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start = time.Now()
	result := p.deps.Synthesizer.Synthesize(ctx, evidence, fields, evidenceSet, consistency, visual)
	path, err := p.deps.Synthesizer.Persist(ctx, result)
	p.observe(stageSynthesize, start, err)
	if err != nil {
		return nil, err
	}
	p.deps.Metrics.ResultConfidence(result.ConfidenceScore)

	if p.deps.Catalog != nil && path != "" {
		rec := domain.ResultRecord{
			DocumentID: result.DocumentID,
			Query:      result.Query,
			Path:       path,
			Confidence: result.ConfidenceScore,
			CreatedAt:  result.Timestamp,
		}
		if err := p.deps.Catalog.RecordResult(ctx, rec); err != nil {
			return nil, fmt.Errorf("record result: %w", err)
		}
	}
	return result, nil
}

func (p *Pipeline) retrieve(ctx context.Context, query string, opts driving.QueryOptions) (domain.EvidenceContext, error) {
	logger.Section("Retrieval")

	kText := p.deps.Retrieval.TopKText
	if opts.TopKText > 0 {
		kText = opts.TopKText
	}
	kImage := p.deps.Retrieval.TopKImage
	if opts.TopKImage > 0 {
		kImage = opts.TopKImage
	}

	var (
		textHits  []domain.TextHit
		imageHits []domain.ImageHit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if opts.DocumentID != "" {
			textHits, err = p.deps.TextIndex.SearchDocument(gctx, query, kText, opts.DocumentID)
		} else {
			textHits, err = p.deps.TextIndex.Search(gctx, query, kText)
		}
		if err != nil {
			return fmt.Errorf("search text: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if opts.DocumentID != "" {
			imageHits, err = p.deps.ImageIndex.SearchDocument(gctx, query, kImage, opts.DocumentID)
		} else {
			imageHits, err = p.deps.ImageIndex.Search(gctx, query, kImage)
		}
		if err != nil {
			return fmt.Errorf("search images: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.EvidenceContext{}, err
	}
	logger.Debug("Retrieved %d text and %d image hits", len(textHits), len(imageHits))

	evidence := p.deps.Fusion.Fuse(query, textHits, imageHits)
	evidence.DocumentID = opts.DocumentID
	return evidence, nil
}

func (p *Pipeline) observe(stage string, start time.Time, err error) {
	logger.Timed(stage, start, err)
	p.deps.Metrics.ObserveStage(stage, time.Since(start), err)
}
