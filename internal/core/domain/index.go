package domain

// TextRecord is the back-reference stored beside one text vector.
type TextRecord struct {
	DocumentID string `json:"doc_id"`
	PageID     int    `json:"page_id"`
	ChunkID    int    `json:"chunk_id"`
	Text       string `json:"text"`
}

// ImageRecord is the back-reference stored beside one image vector.
type ImageRecord struct {
	DocumentID string `json:"doc_id"`
	PageID     int    `json:"page_id"`
	ImagePath  string `json:"image_path"`
}

// TextHit is one text search result.
type TextHit struct {
	Record TextRecord `json:"metadata"`

	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`

	// Score is 1/(1+distance), in (0,1].
	Score float64 `json:"score"`
}

// ImageHit is one image search result.
type ImageHit struct {
	Record ImageRecord `json:"metadata"`
	Rank   int         `json:"rank"`
	Score  float64     `json:"score"`
}

// SimilarityFromDistance converts a squared L2 distance into a relevance
// score in (0, 1].
func SimilarityFromDistance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}
