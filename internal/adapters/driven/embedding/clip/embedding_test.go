package clip

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

type fakeServer struct {
	*httptest.Server
	imageCalls atomic.Int32
}

func newFakeServer(t *testing.T, dims int) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/embed/images":
			fs.imageCalls.Add(1)
			var req imagesRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			out := make([][]float32, len(req.Images))
			for i, img := range req.Images {
				raw, err := base64.StdEncoding.DecodeString(img)
				require.NoError(t, err)
				out[i] = make([]float32, dims)
				out[i][0] = float32(len(raw))
			}
			_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: out})
		case "/embed/texts":
			var req textsRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			out := make([][]float32, len(req.Texts))
			for i := range req.Texts {
				out[i] = make([]float32, dims)
				out[i][1] = 1
			}
			_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: out})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func writeImages(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(paths[i], make([]byte, i+1), 0o600))
	}
	return paths
}

func TestEmbedImages_Batches(t *testing.T) {
	srv := newFakeServer(t, DefaultDimensions)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, BatchSize: 2})

	vecs, err := svc.EmbedImages(context.Background(), writeImages(t, 5))
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, int32(3), srv.imageCalls.Load())
}

func TestEmbedQuery(t *testing.T) {
	srv := newFakeServer(t, DefaultDimensions)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	vec, err := svc.EmbedQuery(context.Background(), "signature stamp")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDimensions)
	assert.Equal(t, float32(1), vec[1])
}

func TestEmbedImages_DimensionMismatch(t *testing.T) {
	srv := newFakeServer(t, 8)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := svc.EmbedImages(context.Background(), writeImages(t, 1))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestEmbedImages_MissingFile(t *testing.T) {
	srv := newFakeServer(t, DefaultDimensions)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := svc.EmbedImages(context.Background(), []string{filepath.Join(t.TempDir(), "nope.png")})
	assert.Error(t, err)
	assert.Zero(t, srv.imageCalls.Load())
}

func TestPing(t *testing.T) {
	srv := newFakeServer(t, DefaultDimensions)
	assert.NoError(t, NewEmbeddingService(Config{BaseURL: srv.URL}).Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.Error(t, NewEmbeddingService(Config{BaseURL: down.URL}).Ping(context.Background()))
}
