package domain

import "sort"

// FieldClass groups fields that share validation rules.
type FieldClass string

// Field classes.
const (
	FieldClassIdentifier FieldClass = "identifier"
	FieldClassAmount     FieldClass = "amount"
	FieldClassDate       FieldClass = "date"
	FieldClassStatus     FieldClass = "status"
	FieldClassName       FieldClass = "name"
	FieldClassText       FieldClass = "text"
)

// FallbackKind selects the heuristic used when no pattern matches.
type FallbackKind string

// Fallback heuristics.
const (
	FallbackNone FallbackKind = ""

	// FallbackFirstNameLine picks the first short, mixed-case, digit-free line.
	FallbackFirstNameLine FallbackKind = "first_name_line"

	// FallbackLongestLine picks the longest line over a minimum length.
	FallbackLongestLine FallbackKind = "longest_line"
)

// FieldSpec is one entry of the field catalog.
type FieldSpec struct {
	// Name is the result key, e.g. "policy_number".
	Name string

	// Label is the human label, e.g. "Policy Number".
	Label string

	Class FieldClass

	// Patterns are tried in order, most specific first.
	// The first capture group is the value.
	Patterns []string

	Fallback FallbackKind
}

// SlotName is the structured output key for the field, e.g. "Policy_Number".
func (f FieldSpec) SlotName() string {
	out := make([]byte, 0, len(f.Label))
	for i := 0; i < len(f.Label); i++ {
		if f.Label[i] == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, f.Label[i])
	}
	return string(out)
}

// Extraction strategies recorded with each field.
const (
	StrategyPattern  = "pattern"
	StrategyFallback = "fallback"
)

// CriticalFieldSet holds the fields extracted for one query.
// A field is present only if extraction succeeded and passed validation.
type CriticalFieldSet struct {
	Values     map[string]string  `json:"critical_fields"`
	Confidence map[string]float64 `json:"confidence_scores"`

	// Strategy records how each value was found.
	Strategy map[string]string `json:"strategies,omitempty"`
}

// NewCriticalFieldSet returns an empty field set.
func NewCriticalFieldSet() CriticalFieldSet {
	return CriticalFieldSet{
		Values:     make(map[string]string),
		Confidence: make(map[string]float64),
		Strategy:   make(map[string]string),
	}
}

// Set records a field value.
func (s CriticalFieldSet) Set(name, value string, confidence float64, strategy string) {
	s.Values[name] = value
	s.Confidence[name] = confidence
	if s.Strategy != nil {
		s.Strategy[name] = strategy
	}
}

// Get returns a field value and whether it is present.
func (s CriticalFieldSet) Get(name string) (string, bool) {
	v, ok := s.Values[name]
	return v, ok
}

// Has reports whether a field is present.
func (s CriticalFieldSet) Has(name string) bool {
	_, ok := s.Values[name]
	return ok
}

// Len returns the number of extracted fields.
func (s CriticalFieldSet) Len() int {
	return len(s.Values)
}

// Names returns the extracted field names in sorted order.
func (s CriticalFieldSet) Names() []string {
	names := make([]string, 0, len(s.Values))
	for name := range s.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvidenceSet is the supporting material for a result.
type EvidenceSet struct {
	// Pages are deduplicated and sorted ascending.
	Pages      []int    `json:"pages"`
	Images     []string `json:"images"`
	TextChunks []string `json:"text_chunks"`
}

// AddPages merges page ids into the set, keeping it sorted and unique.
func (e *EvidenceSet) AddPages(pages ...int) {
	seen := make(map[int]struct{}, len(e.Pages)+len(pages))
	merged := make([]int, 0, len(e.Pages)+len(pages))
	for _, p := range append(append([]int{}, e.Pages...), pages...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		merged = append(merged, p)
	}
	sort.Ints(merged)
	e.Pages = merged
}

// Clone returns a deep copy.
func (e EvidenceSet) Clone() EvidenceSet {
	return EvidenceSet{
		Pages:      append([]int{}, e.Pages...),
		Images:     append([]string{}, e.Images...),
		TextChunks: append([]string{}, e.TextChunks...),
	}
}
