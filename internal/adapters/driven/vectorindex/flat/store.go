// Package flat provides an exact L2 vector store with a single-file
// binary format.
package flat

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// magic identifies the blob format and its version.
var magic = [8]byte{'D', 'S', 'F', 'L', 'A', 'T', '0', '1'}

// Store keeps vectors in one contiguous slice and searches by brute force.
type Store struct {
	mu        sync.RWMutex
	dimension int
	data      []float32
}

// New creates an empty store for vectors of the given dimension.
func New(dimension int) *Store {
	return &Store{dimension: dimension}
}

// Factory adapts New to a constructor that returns the port type.
func Factory(dimension int) driven.VectorStore {
	return New(dimension)
}

// Add appends vectors. A vector of the wrong dimension rejects the batch.
func (s *Store) Add(_ context.Context, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, store has %d",
				domain.ErrDimensionMismatch, i, len(v), s.dimension)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		s.data = append(s.data, v...)
	}
	return nil
}

// Search returns up to k nearest vectors by ascending squared L2 distance.
// Equal distances keep insertion order.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.lenLocked()
	if k <= 0 || n == 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, n)
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := s.data[i*s.dimension : (i+1)*s.dimension]
		hits[i] = driven.VectorHit{Position: i, Distance: squaredL2(query, row)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})
	if k < n {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *Store) lenLocked() int {
	if s.dimension == 0 {
		return 0
	}
	return len(s.data) / s.dimension
}

// Dimensions returns the declared vector dimension.
func (s *Store) Dimensions() int {
	return s.dimension
}

// Truncate drops every vector at position n and above.
func (s *Store) Truncate(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n < s.lenLocked() {
		s.data = s.data[:n*s.dimension]
	}
}

// Reset removes every vector.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
}

// Save writes the blob: magic, uint32 dimension, uint64 count, then the
// vectors as little-endian float32.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	w := bufio.NewWriter(f)
	werr := s.write(w)
	if werr == nil {
		werr = w.Flush()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write index file: %w", werr)
	}
	return os.Rename(tmp, path)
}

func (s *Store) write(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(s.dimension)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(s.lenLocked())); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, s.data)
}

// Load replaces the contents with the blob at path. A malformed blob or
// one with a different dimension wraps domain.ErrCorruptIndex and leaves
// the store unchanged.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("%w: read header: %w", domain.ErrCorruptIndex, err)
	}
	if header != magic {
		return fmt.Errorf("%w: unrecognised index format", domain.ErrCorruptIndex)
	}

	var dim uint32
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("%w: read dimension: %w", domain.ErrCorruptIndex, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: read count: %w", domain.ErrCorruptIndex, err)
	}
	if int(dim) != s.dimension {
		return fmt.Errorf("%w: index has %d dimensions, store has %d", domain.ErrCorruptIndex, dim, s.dimension)
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}
	const headerSize = 8 + 4 + 8
	want := uint64(headerSize) + count*uint64(dim)*4
	if dim == 0 || count > math.MaxInt32 || uint64(info.Size()) != want {
		return fmt.Errorf("%w: index file is %d bytes, expected %d", domain.ErrCorruptIndex, info.Size(), want)
	}

	data := make([]float32, int(count)*int(dim))
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: truncated vectors", domain.ErrCorruptIndex)
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// squaredL2 is the flat-L2 metric: the sum of squared differences, with no
// square root.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
