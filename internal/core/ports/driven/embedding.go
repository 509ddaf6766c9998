package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorStore which stores and searches vectors.
// EmbeddingService generates vectors; VectorStore keeps them.
//
// Implementations may include:
//   - Hashing (offline feature hashing, deterministic)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// Indexing relies on this: adding N chunks makes one EmbedBatch call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ImageEmbeddingService embeds page images and text queries into one
// cross-modal space. It is independent of the text EmbeddingService:
// vectors from the two services are never compared with each other.
//
// Implementations may include:
//   - Hashing (thumbnail grid + caption hashing, offline)
//   - CLIP (inference server over HTTP)
type ImageEmbeddingService interface {
	// EmbedImages embeds the images at the given paths in one call.
	EmbedImages(ctx context.Context, paths []string) ([][]float32, error)

	// EmbedQuery embeds a text query into the image space.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}
