package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/logger"
)

// Scores folded into the aggregate confidence.
const (
	consistentScore   = 0.9
	inconsistentScore = 0.5
	visualMatchScore  = 0.85
	defaultConfidence = 0.5
	summaryElements   = 2
)

// summarySentence renders one field for the summary.
type summarySentence struct {
	field    string
	template string
}

// Summary sentences in output order: identifiers, then amounts, then status.
var summarySentences = []summarySentence{
	{"policy_number", "Policy %s has been analyzed."},
	{"claim_number", "Claim %s was identified."},
	{"invoice_number", "Invoice %s was identified."},
	{"claim_amount", "The claim amount is %s."},
	{"amount_due", "The amount due is %s."},
	{"status", "Current status: %s."},
}

// Synthesizer assembles the final result of a query and persists it.
type Synthesizer struct {
	fields []domain.FieldSpec
	store  driven.ResultStore
	now    func() time.Time
}

// NewSynthesizer creates a synthesizer over the field catalog. The store
// is optional; without one Persist is a no-op.
func NewSynthesizer(fields []domain.FieldSpec, store driven.ResultStore) *Synthesizer {
	return &Synthesizer{fields: fields, store: store, now: time.Now}
}

// Synthesize builds the structured output, summary and aggregate
// confidence. The query and document scope come from the fused context.
// The result owns copies of everything it cites.
func (s *Synthesizer) Synthesize(
	_ context.Context,
	evidence domain.EvidenceContext,
	fields domain.CriticalFieldSet,
	evidenceSet domain.EvidenceSet,
	consistency domain.ConsistencyReport,
	visual domain.VisualReport,
) *domain.FinalResult {
	logger.Section("Synthesis")

	data := domain.StructuredData{
		Fields:           make(map[string]string, len(s.fields)),
		EvidencePages:    append([]int{}, evidenceSet.Pages...),
		VisualElements:   append([]string{}, visual.Elements...),
		ConsistencyCheck: consistency.IsConsistent,
	}
	for _, f := range s.fields {
		if v, ok := fields.Get(f.Name); ok {
			data.Fields[f.SlotName()] = v
		} else {
			data.Fields[f.SlotName()] = domain.NotFound
		}
	}

	result := &domain.FinalResult{
		Query:           evidence.Query,
		DocumentID:      evidence.DocumentID,
		StructuredData:  data,
		Summary:         s.summary(fields, data),
		ConfidenceScore: aggregateConfidence(fields, consistency, visual),
		Evidence: domain.EvidenceSet{
			Pages:      append([]int{}, evidenceSet.Pages...),
			Images:     append([]string{}, visual.RelevantImages...),
			TextChunks: append([]string{}, consistency.RelevantChunks...),
		},
		Timestamp: s.now(),
	}
	if len(result.Evidence.Images) == 0 {
		result.Evidence.Images = append(result.Evidence.Images, evidenceSet.Images...)
	}
	if len(result.Evidence.TextChunks) == 0 {
		result.Evidence.TextChunks = append(result.Evidence.TextChunks, evidenceSet.TextChunks...)
	}

	logger.Info("Result confidence %.3f", result.ConfidenceScore)
	return result
}

// Persist writes the result artifact and returns its path.
func (s *Synthesizer) Persist(ctx context.Context, result *domain.FinalResult) (string, error) {
	if s.store == nil {
		return "", nil
	}
	path, err := s.store.SaveResult(ctx, result)
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return path, nil
}

func (s *Synthesizer) summary(fields domain.CriticalFieldSet, data domain.StructuredData) string {
	var parts []string

	for _, sentence := range summarySentences {
		if v, ok := fields.Get(sentence.field); ok {
			parts = append(parts, fmt.Sprintf(sentence.template, v))
		}
	}

	if len(data.EvidencePages) > 0 {
		pages := make([]string, len(data.EvidencePages))
		for i, p := range data.EvidencePages {
			pages[i] = fmt.Sprint(p)
		}
		parts = append(parts, fmt.Sprintf("Evidence found on pages %s.", strings.Join(pages, ", ")))
	}

	if len(data.VisualElements) > 0 {
		shown := data.VisualElements
		if len(shown) > summaryElements {
			shown = shown[:summaryElements]
		}
		parts = append(parts, fmt.Sprintf("Visual analysis confirmed: %s.", strings.Join(shown, ", ")))
	}

	if !data.ConsistencyCheck {
		parts = append(parts, "Note: Some inconsistencies were detected in the data.")
	}

	return strings.Join(parts, " ")
}

// aggregateConfidence averages the field confidences with the
// consistency score and, when a field was visually corroborated, the
// visual score.
func aggregateConfidence(fields domain.CriticalFieldSet, consistency domain.ConsistencyReport, visual domain.VisualReport) float64 {
	scores := make([]float64, 0, fields.Len()+2)
	for _, name := range fields.Names() {
		scores = append(scores, fields.Confidence[name])
	}
	if consistency.IsConsistent {
		scores = append(scores, consistentScore)
	} else {
		scores = append(scores, inconsistentScore)
	}
	if visual.HasMatches() {
		scores = append(scores, visualMatchScore)
	}

	if len(scores) == 0 {
		return defaultConfidence
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
