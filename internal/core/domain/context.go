package domain

// FusionWeights are the configured text/image weights carried with a
// fused context. They are informational; fusion never rescores hits.
type FusionWeights struct {
	Text  float64 `json:"text_weight"`
	Image float64 `json:"image_weight"`
}

// EvidenceContext is the fused text and image evidence for one query.
type EvidenceContext struct {
	Query string `json:"query"`

	// DocumentID scopes the query when set.
	DocumentID string `json:"doc_id,omitempty"`

	TextHits  []TextHit  `json:"text_results"`
	ImageHits []ImageHit `json:"image_results"`

	// TextContext is the retrieved snippets joined by blank lines.
	TextContext string `json:"text_context"`

	// ImageContext lists the retrieved images, one per line.
	ImageContext string `json:"image_context"`

	Weights FusionWeights `json:"fusion_weights"`
}

// TopTexts returns the text of the first n text hits.
func (c *EvidenceContext) TopTexts(n int) []string {
	if n > len(c.TextHits) {
		n = len(c.TextHits)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, c.TextHits[i].Record.Text)
	}
	return out
}

// ImagePaths returns the image path of every image hit.
func (c *EvidenceContext) ImagePaths() []string {
	out := make([]string, 0, len(c.ImageHits))
	for i := range c.ImageHits {
		out = append(out, c.ImageHits[i].Record.ImagePath)
	}
	return out
}
