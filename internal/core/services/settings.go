package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyTextEncoder  = "models.text_encoder"
	keyImageEncoder = "models.image_encoder"
	keyOCREngine    = "models.ocr_engine"

	keyTextModel    = "embeddings.text_model"
	keyBaseURL      = "embeddings.base_url"
	keyAPIKey       = "embeddings.api_key"
	keyImageBaseURL = "embeddings.image_base_url"
	keyTextDim      = "embeddings.text_dim"
	keyImageDim     = "embeddings.image_dim"
	keyChunkSize    = "embeddings.chunk_size"
	keyChunkOverlap = "embeddings.chunk_overlap"
	keyAlpha        = "embeddings.alpha"
	keyBeta         = "embeddings.beta"

	keyTopKText  = "retrieval.top_k_text"
	keyTopKImage = "retrieval.top_k_image"

	keyKeywordWeight  = "classifier.keyword_weight"
	keySemanticWeight = "classifier.semantic_weight"
	keyPatternWeight  = "classifier.pattern_weight"

	keyEvidenceThreshold  = "extraction.evidence_threshold"
	keyBaseConfidence     = "extraction.base_confidence"
	keyDecay              = "extraction.decay"
	keyFloor              = "extraction.floor"
	keyBonus              = "extraction.bonus"
	keyBonusLength        = "extraction.bonus_length"
	keyMaxConfidence      = "extraction.max_confidence"
	keyFallbackConfidence = "extraction.fallback_confidence"

	keyDPI      = "preprocess.dpi"
	keyLanguage = "preprocess.language"
	keyWorkers  = "preprocess.workers"

	keyDataDir = "paths.data_dir"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every key in display order with its value type.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyTextEncoder, kindString},
	{keyImageEncoder, kindString},
	{keyOCREngine, kindString},
	{keyTextModel, kindString},
	{keyBaseURL, kindString},
	{keyAPIKey, kindString},
	{keyImageBaseURL, kindString},
	{keyTextDim, kindInt},
	{keyImageDim, kindInt},
	{keyChunkSize, kindInt},
	{keyChunkOverlap, kindInt},
	{keyAlpha, kindFloat},
	{keyBeta, kindFloat},
	{keyTopKText, kindInt},
	{keyTopKImage, kindInt},
	{keyKeywordWeight, kindFloat},
	{keySemanticWeight, kindFloat},
	{keyPatternWeight, kindFloat},
	{keyEvidenceThreshold, kindFloat},
	{keyBaseConfidence, kindFloat},
	{keyDecay, kindFloat},
	{keyFloor, kindFloat},
	{keyBonus, kindFloat},
	{keyBonusLength, kindInt},
	{keyMaxConfidence, kindFloat},
	{keyFallbackConfidence, kindFloat},
	{keyDPI, kindInt},
	{keyLanguage, kindString},
	{keyWorkers, kindInt},
	{keyDataDir, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EncoderValidator
}

// NewSettingsService creates a new settings service. The validator is
// optional; without it Check only validates the stored values.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EncoderValidator) *SettingsService {
	return &SettingsService{configStore: configStore, validator: validator}
}

// Get retrieves current application settings. Stored keys override the
// defaults; unknown encoder names fall back to the default encoder.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Models: domain.ModelSettings{
			TextEncoder:  domain.TextEncoder(s.getString(keyTextEncoder, d.Models.TextEncoder.String())),
			ImageEncoder: domain.ImageEncoder(s.getString(keyImageEncoder, d.Models.ImageEncoder.String())),
			OCREngine:    s.getString(keyOCREngine, d.Models.OCREngine),
		},
		Embedding: domain.EmbeddingSettings{
			TextModel:    s.configStore.GetString(keyTextModel),
			BaseURL:      s.configStore.GetString(keyBaseURL),
			APIKey:       s.configStore.GetString(keyAPIKey),
			ImageBaseURL: s.configStore.GetString(keyImageBaseURL),
			TextDim:      s.getInt(keyTextDim, d.Embedding.TextDim),
			ImageDim:     s.getInt(keyImageDim, d.Embedding.ImageDim),
			ChunkSize:    s.getInt(keyChunkSize, d.Embedding.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, d.Embedding.ChunkOverlap),
			Alpha:        s.getFloat(keyAlpha, d.Embedding.Alpha),
			Beta:         s.getFloat(keyBeta, d.Embedding.Beta),
		},
		Retrieval: domain.RetrievalSettings{
			TopKText:  s.getInt(keyTopKText, d.Retrieval.TopKText),
			TopKImage: s.getInt(keyTopKImage, d.Retrieval.TopKImage),
		},
		Classifier: domain.ClassifierSettings{
			KeywordWeight:  s.getFloat(keyKeywordWeight, d.Classifier.KeywordWeight),
			SemanticWeight: s.getFloat(keySemanticWeight, d.Classifier.SemanticWeight),
			PatternWeight:  s.getFloat(keyPatternWeight, d.Classifier.PatternWeight),
		},
		Extraction: domain.ExtractionSettings{
			EvidenceThreshold:  s.getFloat(keyEvidenceThreshold, d.Extraction.EvidenceThreshold),
			BaseConfidence:     s.getFloat(keyBaseConfidence, d.Extraction.BaseConfidence),
			Decay:              s.getFloat(keyDecay, d.Extraction.Decay),
			Floor:              s.getFloat(keyFloor, d.Extraction.Floor),
			Bonus:              s.getFloat(keyBonus, d.Extraction.Bonus),
			BonusLength:        s.getInt(keyBonusLength, d.Extraction.BonusLength),
			MaxConfidence:      s.getFloat(keyMaxConfidence, d.Extraction.MaxConfidence),
			FallbackConfidence: s.getFloat(keyFallbackConfidence, d.Extraction.FallbackConfidence),
		},
		Preprocess: domain.PreprocessSettings{
			DPI:      s.getInt(keyDPI, d.Preprocess.DPI),
			Language: s.getString(keyLanguage, d.Preprocess.Language),
			Workers:  s.getInt(keyWorkers, d.Preprocess.Workers),
		},
		Paths: domain.PathSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
	}

	if !settings.Models.TextEncoder.IsValid() {
		settings.Models.TextEncoder = d.Models.TextEncoder
	}
	if !settings.Models.ImageEncoder.IsValid() {
		settings.Models.ImageEncoder = d.Models.ImageEncoder
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := s.kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown settings key %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	default:
		switch key {
		case keyTextEncoder:
			if !domain.TextEncoder(value).IsValid() {
				return fmt.Errorf("%w: unknown text encoder %q", domain.ErrInvalidConfiguration, value)
			}
		case keyImageEncoder:
			if !domain.ImageEncoder(value).IsValid() {
				return fmt.Errorf("%w: unknown image encoder %q", domain.ErrInvalidConfiguration, value)
			}
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists every recognised settings key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for _, k := range settingKeys {
		keys = append(keys, k.key)
	}
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// Check validates the settings and pings the configured encoders.
func (s *SettingsService) Check(ctx context.Context) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if s.validator == nil {
		return nil
	}
	return s.validator.ValidateEncoders(ctx, settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (s *SettingsService) kindOf(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats an explicit 0 as a value, since a chunk overlap of 0 is valid.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}
