// Package pdfcpu validates PDFs and counts their pages with pdfcpu.
package pdfcpu

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.PDFInspector = (*Inspector)(nil)

// Inspector opens PDFs with relaxed validation, so slightly malformed
// scans from insurers still load.
type Inspector struct {
	conf *model.Configuration
}

// NewInspector creates a PDF inspector.
func NewInspector() *Inspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: conf}
}

// PageCount validates the file and returns its page count. Any failure
// wraps domain.ErrUnsupportedDocument.
func (i *Inspector) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnsupportedDocument, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", domain.ErrUnsupportedDocument, path)
	}

	if err := api.ValidateFile(path, i.conf); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnsupportedDocument, err)
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnsupportedDocument, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s has no pages", domain.ErrUnsupportedDocument, path)
	}
	return n, nil
}
