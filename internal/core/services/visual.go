package services

import (
	"context"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Aspect ratio bounds (width / height) of the layout heuristics.
const (
	standardFormMin = 0.7
	standardFormMax = 0.8
	tableRatioMin   = 1.2
)

// Visual elements reported for inspected pages.
const (
	elementHeader = "Header section detected"
	elementTable  = "Table structure identified"
)

// VisualAnalyzer guesses page layout from image proportions and checks
// which extracted fields the layout supports. It is best-effort: errors
// are logged and never returned.
type VisualAnalyzer struct {
	inspector    driven.ImageInspector
	amountFields []string
	statusFields []string
}

// NewVisualAnalyzer creates a visual analyzer. A nil inspector yields
// empty reports.
func NewVisualAnalyzer(inspector driven.ImageInspector, fields []domain.FieldSpec) *VisualAnalyzer {
	v := &VisualAnalyzer{inspector: inspector}
	for _, f := range fields {
		switch f.Class {
		case domain.FieldClassAmount:
			v.amountFields = append(v.amountFields, f.Name)
		case domain.FieldClassStatus:
			v.statusFields = append(v.statusFields, f.Name)
		}
	}
	return v
}

// Analyze inspects the retrieved images and cross-validates the fields.
func (v *VisualAnalyzer) Analyze(ctx context.Context, evidence domain.EvidenceContext, fields domain.CriticalFieldSet) domain.VisualReport {
	report := domain.VisualReport{
		Findings:       domain.VisualFindings{LayoutType: domain.LayoutUnknown},
		Elements:       []string{},
		MatchedFields:  []string{},
		Discrepancies:  []string{},
		RelevantImages: evidence.ImagePaths(),
	}
	if v.inspector == nil {
		return report
	}

	logger.Section("Visual Analysis")

	for _, path := range report.RelevantImages {
		if ctx.Err() != nil {
			break
		}
		w, h, err := v.inspector.Dimensions(path)
		if err != nil || h == 0 {
			logger.Debug("visual: skipping %s: %v", path, err)
			continue
		}
		report.Inspected++

		ratio := float64(w) / float64(h)
		switch {
		case ratio > standardFormMin && ratio < standardFormMax:
			report.Findings.LayoutType = domain.LayoutStandardForm
		case ratio > tableRatioMin:
			report.Findings.HasTables = true
		}
		logger.Debug("visual: %s is %dx%d (ratio %.2f)", path, w, h, ratio)
	}

	if report.Inspected > 0 {
		report.Elements = append(report.Elements, elementHeader)
	}
	if report.Findings.HasTables {
		report.Elements = append(report.Elements, elementTable)
	}

	if report.Findings.HasTables {
		for _, name := range v.amountFields {
			if fields.Has(name) {
				report.MatchedFields = append(report.MatchedFields, labelOf(name)+" likely from table structure")
			}
		}
	}
	// No stamp detector exists, so HasStamps stays false; the rule keeps
	// status corroboration wired for when one does.
	if report.Findings.HasStamps {
		for _, name := range v.statusFields {
			if fields.Has(name) {
				report.MatchedFields = append(report.MatchedFields, "Status validated by stamp presence")
			}
		}
	}

	return report
}

// labelOf turns "claim_amount" into "Claim amount".
func labelOf(name string) string {
	if name == "" {
		return ""
	}
	b := []byte(name)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
