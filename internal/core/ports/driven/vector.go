package driven

import "context"

// VectorStore holds fixed-dimension vectors addressed by insertion position.
// It knows nothing about what the vectors represent; callers keep a
// parallel metadata list co-indexed by position.
type VectorStore interface {
	// Add appends a batch of vectors. Either every vector is appended or
	// none is (a dimension mismatch rejects the whole batch).
	Add(ctx context.Context, vectors [][]float32) error

	// Search returns up to k nearest vectors by ascending L2 distance.
	// An empty store returns an empty slice.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the declared vector dimension.
	Dimensions() int

	// Save writes the vectors to a single blob file.
	Save(path string) error

	// Load replaces the contents with the blob at path.
	Load(path string) error

	// Truncate drops every vector at position n and above.
	Truncate(n int)

	// Reset removes every vector.
	Reset()
}

// VectorHit represents a nearest-neighbour result.
type VectorHit struct {
	// Position is the insertion position of the matched vector.
	Position int

	// Distance is the squared L2 distance to the query.
	Distance float64
}
