// Package pdftoppm rasterises PDF pages with poppler's pdftoppm.
package pdftoppm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/docsight/internal/adapters/driven/execrun"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// DefaultBinary is the pdftoppm executable name.
const DefaultBinary = "pdftoppm"

// Renderer renders single pages to PNG.
type Renderer struct {
	binary string
	runner execrun.Runner
}

// New creates a renderer. Empty binary uses DefaultBinary; a nil runner
// uses os/exec.
func New(binary string, runner execrun.Runner) *Renderer {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = execrun.Exec{}
	}
	return &Renderer{binary: binary, runner: runner}
}

// RenderPage runs
//
//	pdftoppm -r <dpi> -png -f <n> -l <n> -singlefile <pdf> <tmp>/page
//
// and returns the bytes of <tmp>/page.png.
func (r *Renderer) RenderPage(ctx context.Context, pdfPath string, pageNo, dpi int) ([]byte, error) {
	if pageNo < 1 {
		return nil, fmt.Errorf("page number must be at least 1, got %d", pageNo)
	}

	tmpDir, err := os.MkdirTemp("", "docsight-render-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	page := strconv.Itoa(pageNo)
	_, errb, err := r.runner.Run(ctx, r.binary,
		"-r", strconv.Itoa(dpi), "-png", "-f", page, "-l", page, "-singlefile", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, execrun.Truncate(string(bytes.TrimSpace(errb)), 512))
	}

	png, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d: %w", pageNo, err)
	}
	return png, nil
}
