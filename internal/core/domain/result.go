package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotFound marks a structured slot whose field was not extracted.
const NotFound = "N/A"

// Structured output keys that are not catalog fields.
const (
	SlotEvidencePages    = "Evidence_Pages"
	SlotVisualElements   = "Visual_Elements_Detected"
	SlotConsistencyCheck = "Consistency_Check"
)

// StructuredData is the fixed-slot structured output of a result.
// It serialises as one flat JSON object.
type StructuredData struct {
	// Fields maps slot name (e.g. "Policy_Number") to value or NotFound.
	Fields map[string]string

	EvidencePages    []int
	VisualElements   []string
	ConsistencyCheck bool
}

// Value returns a slot value; absent slots read as NotFound.
func (d StructuredData) Value(slot string) string {
	if v, ok := d.Fields[slot]; ok {
		return v
	}
	return NotFound
}

// MarshalJSON flattens the slots into a single object.
func (d StructuredData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+3)
	for k, v := range d.Fields {
		out[k] = v
	}
	pages := d.EvidencePages
	if pages == nil {
		pages = []int{}
	}
	elements := d.VisualElements
	if elements == nil {
		elements = []string{}
	}
	out[SlotEvidencePages] = pages
	out[SlotVisualElements] = elements
	out[SlotConsistencyCheck] = d.ConsistencyCheck
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat object written by MarshalJSON.
func (d *StructuredData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Fields = make(map[string]string, len(raw))
	for k, v := range raw {
		switch k {
		case SlotEvidencePages:
			if err := json.Unmarshal(v, &d.EvidencePages); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
		case SlotVisualElements:
			if err := json.Unmarshal(v, &d.VisualElements); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
		case SlotConsistencyCheck:
			if err := json.Unmarshal(v, &d.ConsistencyCheck); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
		default:
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			d.Fields[k] = s
		}
	}
	return nil
}

// FinalResult is the synthesized answer to one query.
// It owns copies of the evidence it cites.
type FinalResult struct {
	Query           string         `json:"query"`
	DocumentID      string         `json:"doc_id,omitempty"`
	StructuredData  StructuredData `json:"structured_data"`
	Summary         string         `json:"summary"`
	ConfidenceScore float64        `json:"confidence_score"`
	Evidence        EvidenceSet    `json:"evidence"`
	Timestamp       time.Time      `json:"timestamp"`
}
