package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentMetadata describes one processed PDF.
// It owns its PageRecords; page ids are 1-based and contiguous.
type DocumentMetadata struct {
	// ID is the unique identifier for the document (a UUID).
	ID string `json:"doc_id"`

	// Filename is the base name of the source PDF.
	Filename string `json:"filename"`

	// PageCount is the number of pages. Always equal to len(Pages).
	PageCount int `json:"page_count"`

	// Pages holds one record per page in page order.
	Pages []PageRecord `json:"pages"`

	// CreatedAt is when the document was processed.
	CreatedAt time.Time `json:"created_at"`
}

// PageRecord is one rendered and OCR'd page.
type PageRecord struct {
	// PageID is the 1-based page number.
	PageID int `json:"page_id"`

	// Text is the OCR output. An empty string is valid.
	Text string `json:"text"`

	// ImagePath is where the rendered page image was persisted.
	ImagePath string `json:"image_path"`

	// TextPath is where the OCR text was persisted.
	TextPath string `json:"text_path,omitempty"`
}

// AddPage appends a page record and keeps PageCount in step.
func (m *DocumentMetadata) AddPage(p PageRecord) {
	m.Pages = append(m.Pages, p)
	m.PageCount = len(m.Pages)
}

// ImagePaths returns the image path of every page in page order.
func (m *DocumentMetadata) ImagePaths() []string {
	paths := make([]string, 0, len(m.Pages))
	for i := range m.Pages {
		paths = append(paths, m.Pages[i].ImagePath)
	}
	return paths
}

// FullText joins every page's text with a blank line between pages.
func (m *DocumentMetadata) FullText() string {
	parts := make([]string, 0, len(m.Pages))
	for i := range m.Pages {
		parts = append(parts, m.Pages[i].Text)
	}
	return strings.Join(parts, "\n\n")
}

// Validate checks the page invariants.
func (m *DocumentMetadata) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: document id is empty", ErrInvalidInput)
	}
	if m.PageCount != len(m.Pages) {
		return fmt.Errorf("%w: page_count %d does not match %d pages", ErrInvalidInput, m.PageCount, len(m.Pages))
	}
	for i := range m.Pages {
		if m.Pages[i].PageID != i+1 {
			return fmt.Errorf("%w: page %d has id %d", ErrInvalidInput, i+1, m.Pages[i].PageID)
		}
	}
	return nil
}

// Chunk is a contiguous slice of one page's text used for indexing.
type Chunk struct {
	// ID is "<docID>:<pageID>:<position>".
	ID string `json:"id"`

	// DocumentID links to the parent DocumentMetadata.
	DocumentID string `json:"doc_id"`

	// PageID is the page the text came from.
	PageID int `json:"page_id"`

	// Position is the ordinal of the chunk within its page.
	Position int `json:"chunk_id"`

	// Content is the chunk text. Never empty after trimming.
	Content string `json:"text"`
}

// DocumentRecord is a catalog entry for a processed document.
type DocumentRecord struct {
	ID           string
	Filename     string
	PageCount    int
	MetadataPath string
	DocumentType string
	Confidence   float64
	ProcessedAt  time.Time
	ClassifiedAt *time.Time
}

// ResultRecord is a catalog entry for a persisted query result.
type ResultRecord struct {
	ID         int64
	DocumentID string
	Query      string
	Path       string
	Confidence float64
	CreatedAt  time.Time
}
