// Package clip provides an image embedding adapter for a CLIP inference
// server. Page images and text queries are embedded into one space.
//
// The server is expected to expose:
//
//	POST /embed/images {"model": "...", "images": ["<base64 png>", ...]}
//	POST /embed/texts  {"model": "...", "texts": ["...", ...]}
//	GET  /health
//
// both embed endpoints answering {"embeddings": [[...], ...]}.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/custodia-labs/docsight/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.ImageEmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:51000"
	DefaultModel      = "ViT-B-32"
	DefaultTimeout    = 120 * time.Second
	DefaultDimensions = 512
	DefaultBatchSize  = 16
)

// Config holds configuration for the CLIP embedding service.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// BatchSize caps the number of images per request. Rendered pages are
	// large, so batches stay small.
	BatchSize int

	RateLimit ratelimit.Config
}

// EmbeddingService embeds page images through a CLIP server.
type EmbeddingService struct {
	client     *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	model      string
	dimensions int
	batchSize  int
}

type imagesRequest struct {
	Model  string   `json:"model"`
	Images []string `json:"images"`
}

type textsRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// NewEmbeddingService creates a CLIP embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.New(cfg.RateLimit),
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}
}

// EmbedImages reads and embeds every image, BatchSize images per request.
func (s *EmbeddingService) EmbedImages(ctx context.Context, paths []string) ([][]float32, error) {
	out := make([][]float32, 0, len(paths))
	for start := 0; start < len(paths); start += s.batchSize {
		end := min(start+s.batchSize, len(paths))

		encoded := make([]string, 0, end-start)
		for _, path := range paths[start:end] {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("clip: read image: %w", err)
			}
			encoded = append(encoded, base64.StdEncoding.EncodeToString(data))
		}

		vecs, err := s.post(ctx, "/embed/images", imagesRequest{Model: s.model, Images: encoded}, len(encoded))
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// EmbedQuery embeds a text query with the CLIP text tower.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.post(ctx, "/embed/texts", textsRequest{Model: s.model, Texts: []string{text}}, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *EmbeddingService) post(ctx context.Context, path string, body any, want int) ([][]float32, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("clip: marshal request: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("clip: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clip: send request: %w", err)
	}
	defer resp.Body.Close()
	s.limiter.Observe(resp)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("clip: server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("clip: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("clip: %s", parsed.Error)
	}
	if len(parsed.Embeddings) != want {
		return nil, fmt.Errorf("clip: %d embeddings returned for %d inputs", len(parsed.Embeddings), want)
	}
	for _, vec := range parsed.Embeddings {
		if len(vec) != s.dimensions {
			return nil, fmt.Errorf("%w: %s returned %d dimensions, want %d",
				domain.ErrDimensionMismatch, s.model, len(vec), s.dimensions)
		}
	}
	return parsed.Embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the CLIP model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the server's health endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("clip: failed to create ping request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("clip: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clip: health check returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
