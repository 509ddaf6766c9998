package flat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

func TestStore_AddAndSearch(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, [][]float32{{0, 0}, {3, 4}, {1, 0}}))
	assert.Equal(t, 3, s.Len())

	hits, err := s.Search(ctx, []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Position)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-9)
	assert.Equal(t, 2, hits[1].Position)
	assert.InDelta(t, 1.0, hits[1].Distance, 1e-9)
}

func TestStore_DistanceIsSquared(t *testing.T) {
	s := New(2)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, [][]float32{{0, 0}}))

	hits, err := s.Search(ctx, []float32{2, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 4.0, hits[0].Distance, 1e-9)
	assert.InDelta(t, 0.2, domain.SimilarityFromDistance(hits[0].Distance), 1e-9)
}

func TestStore_SearchReturnsAllWhenKExceedsLen(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Add(context.Background(), [][]float32{{1}, {2}}))

	hits, err := s.Search(context.Background(), []float32{0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestStore_SearchEmpty(t *testing.T) {
	s := New(3)
	hits, err := s.Search(context.Background(), []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_AddRejectsWholeBatchOnDimensionMismatch(t *testing.T) {
	s := New(2)
	err := s.Add(context.Background(), [][]float32{{1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, s.Len())
}

func TestStore_SearchDimensionMismatch(t *testing.T) {
	s := New(2)
	_, err := s.Search(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_TieKeepsInsertionOrder(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Add(context.Background(), [][]float32{{1}, {-1}, {1}}))

	hits, err := s.Search(context.Background(), []float32{0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{hits[0].Position, hits[1].Position, hits[2].Position})
}

func TestStore_Truncate(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Add(context.Background(), [][]float32{{1}, {2}, {3}}))
	s.Truncate(1)
	assert.Equal(t, 1, s.Len())
	s.Reset()
	assert.Equal(t, 0, s.Len())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.index")
	s := New(3)
	require.NoError(t, s.Add(context.Background(), [][]float32{{1, 2, 3}, {4, 5, 6}}))
	require.NoError(t, s.Save(path))

	loaded := New(3)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 2, loaded.Len())

	want, err := s.Search(context.Background(), []float32{4, 5, 5}, 2)
	require.NoError(t, err)
	got, err := loaded.Search(context.Background(), []float32{4, 5, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_LoadDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.index")
	s := New(3)
	require.NoError(t, s.Add(context.Background(), [][]float32{{1, 2, 3}}))
	require.NoError(t, s.Save(path))

	other := New(4)
	require.NoError(t, other.Add(context.Background(), [][]float32{{1, 1, 1, 1}}))
	err := other.Load(path)
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
	assert.Equal(t, 1, other.Len(), "failed load must not change the store")
}

func TestStore_LoadMalformed(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
	}{
		{"bad magic", []byte("NOTANINDEXFILE-----------")},
		{"short header", []byte("DSF")},
		{"truncated body", append(append(magic[:], 2, 0, 0, 0), 5, 0, 0, 0, 0, 0, 0, 0, 1, 2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".index")
			require.NoError(t, os.WriteFile(path, tc.content, 0o600))
			err := New(2).Load(path)
			assert.ErrorIs(t, err, domain.ErrCorruptIndex)
		})
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	err := New(2).Load(filepath.Join(t.TempDir(), "missing.index"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
