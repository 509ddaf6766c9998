// Package xlsx exports query results as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.ResultExporter = (*Exporter)(nil)

// SheetName is the worksheet holding one row per result.
const SheetName = "Results"

// summaryWidth caps the summary column so rows stay readable.
const summaryWidth = 280

// Exporter writes results to .xlsx.
type Exporter struct{}

// NewExporter creates an xlsx exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Extension returns ".xlsx".
func (e *Exporter) Extension() string {
	return ".xlsx"
}

// Export writes a header row followed by one row per result. Field slot
// columns are the sorted union of every result's slots.
func (e *Exporter) Export(ctx context.Context, results []domain.FinalResult, w io.Writer) error {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	slots := slotColumns(results)
	headers := append([]string{"Timestamp", "Document", "Query"}, slots...)
	headers = append(headers,
		domain.SlotEvidencePages, domain.SlotVisualElements, domain.SlotConsistencyCheck,
		"Confidence", "Summary")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx: header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for r, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := r + 2
		values := []any{
			res.Timestamp.UTC().Format(time.RFC3339),
			res.DocumentID,
			res.Query,
		}
		for _, slot := range slots {
			values = append(values, res.StructuredData.Value(slot))
		}
		values = append(values,
			joinPages(res.StructuredData.EvidencePages),
			strings.Join(res.StructuredData.VisualElements, ", "),
			strconv.FormatBool(res.StructuredData.ConsistencyCheck),
			res.ConfidenceScore,
			truncate(res.Summary, summaryWidth),
		)

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 22)
	_ = f.SetColWidth(SheetName, "B", "B", 38)
	_ = f.SetColWidth(SheetName, "C", "C", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	logger.Debug("Exported %d results to xlsx in %s", len(results), time.Since(start).Round(time.Millisecond))
	return nil
}

func slotColumns(results []domain.FinalResult) []string {
	seen := make(map[string]bool)
	var slots []string
	for _, res := range results {
		for slot := range res.StructuredData.Fields {
			if !seen[slot] {
				seen[slot] = true
				slots = append(slots, slot)
			}
		}
	}
	sort.Strings(slots)
	return slots
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
