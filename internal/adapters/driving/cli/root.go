// Package cli implements the docsight command line with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsight/internal/core/ports/driving"
	"github.com/custodia-labs/docsight/internal/logger"
)

var (
	version = "dev"
	verbose bool

	pipelineService driving.PipelineService
	documentService driving.DocumentService
	settingsService driving.SettingsService

	// pipelineErr explains a missing pipeline service.
	pipelineErr error

	// metricsHandler serves Prometheus metrics for --metrics-addr. Nil
	// disables the flag.
	metricsHandler http.Handler

	indicesOnce sync.Once
	indicesErr  error
)

// Services bundles the core services the commands drive.
type Services struct {
	Pipeline driving.PipelineService
	Document driving.DocumentService
	Settings driving.SettingsService
	Metrics  http.Handler

	// PipelineErr is reported by commands that need the pipeline when
	// it could not be built, e.g. an encoder missing its API key.
	PipelineErr error
}

// SetServices injects the core services. Call before Execute.
func SetServices(s Services) {
	pipelineService = s.Pipeline
	documentService = s.Document
	settingsService = s.Settings
	metricsHandler = s.Metrics
	pipelineErr = s.PipelineErr
	indicesOnce = sync.Once{}
	indicesErr = nil
}

// SetVersion sets the version printed by `docsight version`.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "docsight",
	Short: "Extract structured fields from scanned insurance documents",
	Long: `docsight renders and OCRs insurance PDFs, indexes their pages in a text
and an image vector index, classifies them and answers questions with
confidence-scored field values backed by page evidence.

Everything runs locally by default: page text is embedded with an offline
hashing encoder and page images with a thumbnail encoder. Configure OpenAI,
Ollama or a CLIP server with 'docsight settings set'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func requirePipeline() error {
	if pipelineService == nil {
		if pipelineErr != nil {
			return fmt.Errorf("pipeline unavailable: %w", pipelineErr)
		}
		return errors.New("pipeline service not configured")
	}
	return nil
}

// loadIndices restores persisted indices once per process. Commands that
// read or extend the indices call it first, so a new document is appended
// to the existing index rather than replacing it on save.
func loadIndices(ctx context.Context) error {
	indicesOnce.Do(func() {
		indicesErr = pipelineService.LoadIndices(ctx)
	})
	return indicesErr
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
