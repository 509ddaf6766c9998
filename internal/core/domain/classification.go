package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DocumentTypeProfile describes one entry of the document type catalog.
type DocumentTypeProfile struct {
	// Name is the display name, e.g. "Invoice".
	Name string

	// Keywords are matched as lower-case substrings.
	Keywords []string

	// Patterns are regular expressions matched against lower-cased text.
	Patterns []string

	// Description is the human description reported with a classification.
	Description string

	// Fields lists the field catalog names worth showing for this type.
	Fields []string

	// SuggestedQueries are example questions for this type.
	SuggestedQueries []string
}

// ClassificationResult is the output of the document classifier.
type ClassificationResult struct {
	DocumentID      string             `json:"doc_id,omitempty"`
	DocumentType    string             `json:"document_type"`
	ConfidenceScore float64            `json:"confidence_score"`
	AllScores       map[string]float64 `json:"all_scores"`
	Probabilities   map[string]float64 `json:"probabilities"`
	Description     string             `json:"description"`
	TextLength      int                `json:"text_length"`
	ImageCount      int                `json:"image_count"`
}

// RankedType is one row of a classification report.
type RankedType struct {
	Name        string
	Probability float64
}

// Ranked orders the document types by probability, descending, with
// names breaking ties.
func (r *ClassificationResult) Ranked() []RankedType {
	rows := make([]RankedType, 0, len(r.Probabilities))
	for name, p := range r.Probabilities {
		rows = append(rows, RankedType{Name: name, Probability: p})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Probability != rows[j].Probability {
			return rows[i].Probability > rows[j].Probability
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// Report renders the classification as plain text with one probability
// bar per document type, most probable first.
func (r *ClassificationResult) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document type: %s\n", r.DocumentType)
	fmt.Fprintf(&b, "Confidence:    %.1f%%\n", r.ConfidenceScore*100)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description:   %s\n", r.Description)
	}
	fmt.Fprintf(&b, "Text length:   %d characters\n", r.TextLength)
	fmt.Fprintf(&b, "Images:        %d\n", r.ImageCount)
	b.WriteString("\nProbabilities:\n")

	for _, row := range r.Ranked() {
		fmt.Fprintf(&b, "  %-18s %s %5.1f%%\n", row.Name, ProbabilityBar(row.Probability, 20), row.Probability*100)
	}
	return b.String()
}

// ProbabilityBar draws p in [0,1] as a bar of the given width.
func ProbabilityBar(p float64, width int) string {
	filled := int(math.Round(math.Max(0, math.Min(p, 1)) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
