package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Subdirectories of the data dir written by the preprocessor.
const (
	ImagesSubdir = "images"
	TextSubdir   = "text"
)

// Preprocessor renders every page of a PDF, runs OCR on it and persists
// both artifacts.
type Preprocessor struct {
	pdf      driven.PDFInspector
	renderer driven.PageRenderer
	ocr      driven.OCREngine
	dataDir  string
	settings domain.PreprocessSettings
	newID    func() string
	now      func() time.Time
}

// NewPreprocessor creates a preprocessor writing under dataDir.
func NewPreprocessor(
	pdf driven.PDFInspector,
	renderer driven.PageRenderer,
	ocr driven.OCREngine,
	dataDir string,
	settings domain.PreprocessSettings,
) *Preprocessor {
	return &Preprocessor{
		pdf:      pdf,
		renderer: renderer,
		ocr:      ocr,
		dataDir:  dataDir,
		settings: settings,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// ImageDir returns the directory holding rendered pages.
func (p *Preprocessor) ImageDir() string {
	return filepath.Join(p.dataDir, ImagesSubdir)
}

// TextDir returns the directory holding OCR output.
func (p *Preprocessor) TextDir() string {
	return filepath.Join(p.dataDir, TextSubdir)
}

// Process renders and OCRs every page. dpi <= 0 uses the configured default.
func (p *Preprocessor) Process(ctx context.Context, pdfPath string, dpi int) (*domain.DocumentMetadata, error) {
	logger.Section("Preprocessing")

	if p.ocr == nil {
		return nil, domain.ErrOCRUnavailable
	}
	if err := p.ocr.Available(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrOCRUnavailable, p.ocr.Name(), err)
	}

	pages, err := p.pdf.PageCount(ctx, pdfPath)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedDocument, filepath.Base(pdfPath), err)
	}
	if pages <= 0 {
		return nil, fmt.Errorf("%w: %s has no pages", domain.ErrUnsupportedDocument, filepath.Base(pdfPath))
	}

	if dpi <= 0 {
		dpi = p.settings.DPI
	}
	if dpi <= 0 {
		dpi = domain.DefaultSettings().Preprocess.DPI
	}

	for _, dir := range []string{p.ImageDir(), p.TextDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	meta := &domain.DocumentMetadata{
		ID:        p.newID(),
		Filename:  filepath.Base(pdfPath),
		CreatedAt: p.now().UTC(),
	}
	logger.Info("Processing %s (%d pages, %d dpi) as %s", meta.Filename, pages, dpi, meta.ID)

	records := make([]domain.PageRecord, pages)
	g, gctx := errgroup.WithContext(ctx)
	workers := p.settings.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i := 0; i < pages; i++ {
		pageNo := i + 1
		g.Go(func() error {
			rec, err := p.processPage(gctx, pdfPath, meta.ID, pageNo, dpi)
			if err != nil {
				return err
			}
			records[pageNo-1] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.cleanup(meta.ID, pages)
		return nil, err
	}

	for _, rec := range records {
		meta.AddPage(rec)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func (p *Preprocessor) processPage(ctx context.Context, pdfPath, docID string, pageNo, dpi int) (domain.PageRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.PageRecord{}, err
	}
	start := time.Now()
	base := fmt.Sprintf("%s_page_%d", docID, pageNo)

	png, err := p.renderer.RenderPage(ctx, pdfPath, pageNo, dpi)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PageRecord{}, ctx.Err()
		}
		return domain.PageRecord{}, fmt.Errorf("%w: render page %d: %v", domain.ErrUnsupportedDocument, pageNo, err)
	}

	imagePath := filepath.Join(p.ImageDir(), base+".png")
	if err := os.WriteFile(imagePath, png, 0o644); err != nil {
		return domain.PageRecord{}, fmt.Errorf("write page image: %w", err)
	}

	text, err := p.ocr.Recognize(ctx, imagePath)
	if err != nil {
		return domain.PageRecord{}, fmt.Errorf("ocr page %d: %w", pageNo, err)
	}

	textPath := filepath.Join(p.TextDir(), base+".txt")
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return domain.PageRecord{}, fmt.Errorf("write page text: %w", err)
	}

	logger.Debug("Page %d: %d chars in %s", pageNo, len(text), time.Since(start).Round(time.Millisecond))
	return domain.PageRecord{
		PageID:    pageNo,
		Text:      text,
		ImagePath: imagePath,
		TextPath:  textPath,
	}, nil
}

// cleanup removes the artifacts of a failed run.
func (p *Preprocessor) cleanup(docID string, pages int) {
	for n := 1; n <= pages; n++ {
		base := fmt.Sprintf("%s_page_%d", docID, n)
		_ = os.Remove(filepath.Join(p.ImageDir(), base+".png"))
		_ = os.Remove(filepath.Join(p.TextDir(), base+".txt"))
	}
}
