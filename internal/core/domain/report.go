package domain

// Relationship links extracted entities.
type Relationship map[string]string

// ConsistencyReport is the output of the text consistency pass.
type ConsistencyReport struct {
	IsConsistent bool `json:"is_consistent"`

	// Issues lists soft inconsistencies. They never remove fields.
	Issues []string `json:"issues"`

	// Analysis holds query-specific corroborating snippets.
	Analysis []string `json:"detailed_analysis"`

	Relationships map[string]Relationship `json:"relationships"`

	RelevantChunks []string `json:"relevant_chunks"`
}

// Layout types guessed by the visual pass.
const (
	LayoutUnknown      = "unknown"
	LayoutStandardForm = "standard_form"
)

// VisualFindings are the layout guesses for the retrieved images.
type VisualFindings struct {
	LayoutType    string `json:"layout_type"`
	HasTables     bool   `json:"has_tables"`
	HasStamps     bool   `json:"has_stamps"`
	HasSignatures bool   `json:"has_signatures"`
	HasLogos      bool   `json:"has_logos"`
}

// VisualReport is the output of the visual pass.
type VisualReport struct {
	Findings       VisualFindings `json:"visual_findings"`
	Elements       []string       `json:"visual_elements"`
	MatchedFields  []string       `json:"matched_fields"`
	Discrepancies  []string       `json:"discrepancies"`
	RelevantImages []string       `json:"relevant_images"`

	// Inspected counts the images whose dimensions could be read.
	Inspected int `json:"inspected"`
}

// HasMatches reports whether any field was visually corroborated.
func (r *VisualReport) HasMatches() bool {
	return r != nil && len(r.MatchedFields) > 0
}
