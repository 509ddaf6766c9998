package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

func fakeOllama(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models": []}`))
		case "/api/embed":
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "all-minilm", req.Model)

			out := make([][]float64, len(req.Input))
			for i := range req.Input {
				out[i] = make([]float64, dims)
				out[i][0] = float64(len(req.Input[i]))
			}
			_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: out})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	srv := fakeOllama(t, DefaultDimensions)
	defer srv.Close()
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bbb"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(3), vecs[1][0])
}

func TestEmbeddingService_DimensionMismatch(t *testing.T) {
	srv := fakeOllama(t, 16)
	defer srv.Close()
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := svc.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestEmbeddingService_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `model "all-minilm" not found`, http.StatusNotFound)
	}))
	defer srv.Close()
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "status 404")
	assert.Error(t, svc.Ping(context.Background()))
}

func TestEmbeddingService_Ping(t *testing.T) {
	srv := fakeOllama(t, DefaultDimensions)
	defer srv.Close()

	assert.NoError(t, NewEmbeddingService(Config{BaseURL: srv.URL}).Ping(context.Background()))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestEmbeddingService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: url})
	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}
