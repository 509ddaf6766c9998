// Package tesseract implements OCR by shelling out to the tesseract CLI.
package tesseract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/custodia-labs/docsight/internal/adapters/driven/execrun"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Default configuration values.
const (
	DefaultBinary   = "tesseract"
	DefaultLanguage = "eng"
)

// Config holds tesseract options.
type Config struct {
	// Binary is the executable name or absolute path.
	Binary string

	// Language is passed as -l (e.g. "eng", "eng+hin").
	Language string

	// TessdataDir overrides the traineddata location.
	TessdataDir string

	// PSM is the page segmentation mode. 0 keeps tesseract's default.
	PSM int
}

// Engine runs tesseract on page images.
type Engine struct {
	cfg    Config
	runner execrun.Runner
}

// New creates a tesseract engine. A nil runner uses os/exec.
func New(cfg Config, runner execrun.Runner) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if runner == nil {
		runner = execrun.Exec{}
	}
	return &Engine{cfg: cfg, runner: runner}
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return "tesseract"
}

// Available checks that the binary exists and answers --version.
func (e *Engine) Available(ctx context.Context) error {
	if _, err := e.runner.LookPath(e.cfg.Binary); err != nil {
		return fmt.Errorf("%s not found: %w", e.cfg.Binary, err)
	}
	if _, errb, err := e.runner.Run(ctx, e.cfg.Binary, "--version"); err != nil {
		return fmt.Errorf("%s --version: %w (%s)", e.cfg.Binary, err, bytes.TrimSpace(errb))
	}
	return nil
}

// Recognize runs `tesseract <image> stdout -l <lang>` and normalizes the text.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, execrun.Truncate(string(bytes.TrimSpace(errb)), 512))
	}
	return Normalize(string(out)), nil
}
