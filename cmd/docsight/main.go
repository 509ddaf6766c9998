// Command docsight extracts structured fields from scanned insurance documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/docsight/internal/adapters/driven/ai"
	"github.com/custodia-labs/docsight/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsight/internal/adapters/driven/export/xlsx"
	"github.com/custodia-labs/docsight/internal/adapters/driven/imaging"
	metrics "github.com/custodia-labs/docsight/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/docsight/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/docsight/internal/adapters/driven/pdf/pdfcpu"
	"github.com/custodia-labs/docsight/internal/adapters/driven/render/pdftoppm"
	"github.com/custodia-labs/docsight/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/docsight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsight/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsight/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/docsight/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsight/internal/catalog"
	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/core/services"
	"github.com/custodia-labs/docsight/internal/logger"
	"github.com/custodia-labs/docsight/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return err
	}
	bootstrap := services.NewSettingsService(configStore, nil)
	settings, err := bootstrap.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading settings: %v\n", err)
		return err
	}

	dataDir, err := resolveDataDir(settings.Paths.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore,
		ai.NewConfigValidator(filepath.Join(dataDir, services.TextSubdir)))

	var docCatalog driven.DocumentCatalog
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("Catalog unavailable, documents are listed for this run only: %v", err)
		docCatalog = memory.NewCatalog()
	} else {
		defer store.Close()
		docCatalog = store.Catalog()
	}

	results, err := jsonfile.NewStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: preparing result store: %v\n", err)
		return err
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	pipeline, pipelineErr := buildPipeline(settings, dataDir, results, docCatalog, m)
	if pipelineErr != nil {
		logger.Debug("pipeline unavailable: %v", pipelineErr)
	}

	svc := cli.Services{
		Document:    services.NewDocumentService(docCatalog, results, xlsx.NewExporter()),
		Settings:    settingsService,
		Metrics:     m.Handler(),
		PipelineErr: pipelineErr,
	}
	if pipeline != nil {
		svc.Pipeline = pipeline
	}
	cli.SetServices(svc)
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

// resolveDataDir returns the configured data directory or ~/.docsight/data.
func resolveDataDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docsight", "data"), nil
}

// buildPipeline wires the document pipeline from settings.
func buildPipeline(
	settings *domain.Settings,
	dataDir string,
	results driven.ResultStore,
	docs driven.DocumentCatalog,
	m driven.Metrics,
) (*services.Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	textEmbedder, err := ai.NewTextEmbedder(settings)
	if err != nil {
		return nil, err
	}
	imageEmbedder, err := ai.NewImageEmbedder(settings, filepath.Join(dataDir, services.TextSubdir))
	if err != nil {
		return nil, err
	}

	if settings.Models.OCREngine != "" && settings.Models.OCREngine != tesseract.DefaultBinary {
		return nil, fmt.Errorf("%w: unknown OCR engine %q", domain.ErrInvalidConfiguration, settings.Models.OCREngine)
	}
	ocr := tesseract.New(tesseract.Config{Language: settings.Preprocess.Language}, nil)

	chunks, err := chunker.New(
		chunker.WithChunkSize(settings.Embedding.ChunkSize),
		chunker.WithOverlap(settings.Embedding.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	fields := catalog.Fields()
	return services.NewPipeline(services.PipelineDeps{
		Preprocessor: services.NewPreprocessor(
			pdfcpu.NewInspector(),
			pdftoppm.New("", nil),
			ocr,
			dataDir,
			settings.Preprocess,
		),
		Chunker:     chunks,
		TextIndex:   services.NewTextIndex(textEmbedder, flat.Factory),
		ImageIndex:  services.NewImageIndex(imageEmbedder, flat.Factory),
		Classifier:  services.NewClassifier(catalog.DocumentTypes(), textEmbedder, settings.Classifier),
		Fusion:      services.NewFusion(settings.Embedding.Alpha, settings.Embedding.Beta),
		Extractor:   services.NewFieldExtractor(fields, settings.Extraction),
		Consistency: services.NewConsistencyChecker(fields),
		Visual:      services.NewVisualAnalyzer(imaging.NewInspector(), fields),
		Synthesizer: services.NewSynthesizer(fields, results),
		Results:     results,
		Catalog:     docs,
		Metrics:     m,
		IndexDir:    filepath.Join(dataDir, services.EmbeddingsSubdir),
		Retrieval:   settings.Retrieval,
	}), nil
}
