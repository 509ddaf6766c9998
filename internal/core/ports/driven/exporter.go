package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// ResultExporter writes query results in a tabular format.
type ResultExporter interface {
	// Export writes one row per result to w.
	Export(ctx context.Context, results []domain.FinalResult, w io.Writer) error

	// Extension is the file extension of the format, e.g. ".xlsx".
	Extension() string
}
