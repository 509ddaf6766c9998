package domain

import (
	"errors"
	"fmt"
)

const unknownDescription = "Unknown"

// TextEncoder identifies the provider behind the text embedding space.
type TextEncoder string

// Available text encoders.
const (
	// TextEncoderHashing is the offline feature-hashing embedder.
	TextEncoderHashing TextEncoder = "hashing"

	// TextEncoderOllama is a local Ollama instance.
	TextEncoderOllama TextEncoder = "ollama"

	// TextEncoderOpenAI is the OpenAI embeddings API.
	TextEncoderOpenAI TextEncoder = "openai"
)

// IsValid returns true if the encoder is recognised.
func (e TextEncoder) IsValid() bool {
	switch e {
	case TextEncoderHashing, TextEncoderOllama, TextEncoderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this encoder needs an API key.
func (e TextEncoder) RequiresAPIKey() bool {
	return e == TextEncoderOpenAI
}

// String returns the string representation.
func (e TextEncoder) String() string {
	return string(e)
}

// Description returns a human-readable description of the encoder.
func (e TextEncoder) Description() string {
	switch e {
	case TextEncoderHashing:
		return "Hashing (offline, deterministic)"
	case TextEncoderOllama:
		return "Ollama (local)"
	case TextEncoderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// ImageEncoder identifies the provider behind the image embedding space.
type ImageEncoder string

// Available image encoders.
const (
	// ImageEncoderHashing embeds page thumbnails and captions offline.
	ImageEncoderHashing ImageEncoder = "hashing"

	// ImageEncoderCLIP calls a CLIP inference server.
	ImageEncoderCLIP ImageEncoder = "clip"
)

// IsValid returns true if the encoder is recognised.
func (e ImageEncoder) IsValid() bool {
	return e == ImageEncoderHashing || e == ImageEncoderCLIP
}

// String returns the string representation.
func (e ImageEncoder) String() string {
	return string(e)
}

// Description returns a human-readable description of the encoder.
func (e ImageEncoder) Description() string {
	switch e {
	case ImageEncoderHashing:
		return "Hashing (offline thumbnail + caption)"
	case ImageEncoderCLIP:
		return "CLIP (inference server)"
	default:
		return unknownDescription
	}
}

// ModelSettings selects the embedding and OCR backends.
type ModelSettings struct {
	TextEncoder  TextEncoder
	ImageEncoder ImageEncoder
	OCREngine    string
}

// EmbeddingSettings configures the embedding spaces and chunking.
type EmbeddingSettings struct {
	// TextModel is the provider model name (ignored by hashing).
	TextModel string

	// BaseURL is the text provider endpoint.
	BaseURL string

	// APIKey is the text provider key (OpenAI).
	APIKey string

	// ImageBaseURL is the CLIP server endpoint.
	ImageBaseURL string

	TextDim  int
	ImageDim int

	// ChunkSize and ChunkOverlap are measured in whitespace tokens.
	ChunkSize    int
	ChunkOverlap int

	// Alpha and Beta are the text and image fusion weights.
	Alpha float64
	Beta  float64
}

// RetrievalSettings holds top-k counts per modality.
type RetrievalSettings struct {
	TopKText  int
	TopKImage int
}

// ClassifierSettings holds the signal weights of the classifier.
type ClassifierSettings struct {
	KeywordWeight  float64
	SemanticWeight float64
	PatternWeight  float64
}

// ExtractionSettings calibrates field confidence and evidence selection.
// The constants are a heuristic calibration, not derived probabilities.
type ExtractionSettings struct {
	// EvidenceThreshold is the hit score a page must exceed to count as evidence.
	EvidenceThreshold float64

	// BaseConfidence is the confidence of a first-pattern match.
	BaseConfidence float64

	// Decay is subtracted per pattern index.
	Decay float64

	// Floor is the lowest pattern confidence.
	Floor float64

	// Bonus is added for matches of at least BonusLength characters.
	Bonus       float64
	BonusLength int

	// MaxConfidence caps pattern confidence after the bonus.
	MaxConfidence float64

	// FallbackConfidence is assigned to heuristic fallback values.
	FallbackConfidence float64
}

// PreprocessSettings configures rendering and OCR.
type PreprocessSettings struct {
	DPI      int
	Language string
	Workers  int
}

// PathSettings holds storage locations.
type PathSettings struct {
	// DataDir is the root for images, text, embeddings, metadata and results.
	// Empty means ~/.docsight/data.
	DataDir string
}

// Settings holds all application settings.
type Settings struct {
	Models     ModelSettings
	Embedding  EmbeddingSettings
	Retrieval  RetrievalSettings
	Classifier ClassifierSettings
	Extraction ExtractionSettings
	Preprocess PreprocessSettings
	Paths      PathSettings
}

// DefaultSettings returns settings that work offline out of the box.
func DefaultSettings() Settings {
	return Settings{
		Models: ModelSettings{
			TextEncoder:  TextEncoderHashing,
			ImageEncoder: ImageEncoderHashing,
			OCREngine:    "tesseract",
		},
		Embedding: EmbeddingSettings{
			TextDim:      384,
			ImageDim:     512,
			ChunkSize:    100,
			ChunkOverlap: 20,
			Alpha:        0.6,
			Beta:         0.4,
		},
		Retrieval: RetrievalSettings{
			TopKText:  5,
			TopKImage: 3,
		},
		Classifier: ClassifierSettings{
			KeywordWeight:  0.4,
			SemanticWeight: 0.4,
			PatternWeight:  0.2,
		},
		Extraction: DefaultExtractionSettings(),
		Preprocess: PreprocessSettings{
			DPI:      200,
			Language: "eng",
			Workers:  4,
		},
	}
}

// DefaultExtractionSettings returns the default confidence calibration.
func DefaultExtractionSettings() ExtractionSettings {
	return ExtractionSettings{
		EvidenceThreshold:  0.4,
		BaseConfidence:     0.95,
		Decay:              0.05,
		Floor:              0.5,
		Bonus:              0.05,
		BonusLength:        8,
		MaxConfidence:      0.99,
		FallbackConfidence: 0.6,
	}
}

// Validate checks settings at the point of use.
// All failures wrap ErrInvalidConfiguration.
func (s Settings) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...))
	}

	if !s.Models.TextEncoder.IsValid() {
		add("unknown text encoder %q", s.Models.TextEncoder)
	}
	if !s.Models.ImageEncoder.IsValid() {
		add("unknown image encoder %q", s.Models.ImageEncoder)
	}
	if s.Models.TextEncoder.RequiresAPIKey() && s.Embedding.APIKey == "" {
		add("text encoder %s requires embeddings.api_key", s.Models.TextEncoder)
	}
	if err := ValidateChunking(s.Embedding.ChunkSize, s.Embedding.ChunkOverlap); err != nil {
		errs = append(errs, err)
	}
	if s.Embedding.TextDim <= 0 || s.Embedding.ImageDim <= 0 {
		add("embedding dimensions must be positive (text %d, image %d)", s.Embedding.TextDim, s.Embedding.ImageDim)
	}
	if s.Retrieval.TopKText < 1 || s.Retrieval.TopKImage < 1 {
		add("top_k must be at least 1 (text %d, image %d)", s.Retrieval.TopKText, s.Retrieval.TopKImage)
	}
	if t := s.Extraction.EvidenceThreshold; t < 0 || t > 1 {
		add("evidence threshold %.2f outside [0,1]", t)
	}
	if s.Extraction.Floor > s.Extraction.BaseConfidence {
		add("confidence floor %.2f above base %.2f", s.Extraction.Floor, s.Extraction.BaseConfidence)
	}
	if s.Preprocess.DPI <= 0 {
		add("dpi must be positive, got %d", s.Preprocess.DPI)
	}

	return errors.Join(errs...)
}

// ValidateChunking checks chunk window parameters.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidConfiguration, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than size %d", ErrInvalidConfiguration, overlap, size)
	}
	return nil
}

// AllTextEncoders returns the available text encoders.
func AllTextEncoders() []TextEncoder {
	return []TextEncoder{TextEncoderHashing, TextEncoderOllama, TextEncoderOpenAI}
}

// AllImageEncoders returns the available image encoders.
func AllImageEncoders() []ImageEncoder {
	return []ImageEncoder{ImageEncoderHashing, ImageEncoderCLIP}
}
