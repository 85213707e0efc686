package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/config"
	"finrag/internal/domain"
)

const testKeyEnv = "FINRAG_TEST_EMBED_KEY"

// fakeEmbeddings answers /embeddings with vectors whose first component is the
// input's length, returned in reverse order to exercise index alignment.
func fakeEmbeddings(t *testing.T, dim int, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := make([]float32, dim)
			vec[0] = float32(len(req.Input[i]))
			resp.Data = append(resp.Data, embeddingData{Embedding: vec, Index: i})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestEmbedder(t *testing.T, url string, opts Options) *OpenAIEmbedder {
	t.Setenv(testKeyEnv, "secret")
	opts.BaseURL = url
	if opts.Model == "" {
		opts.Model = "test-model"
	}
	e, err := NewOpenAICompatibleEmbedder(testKeyEnv, opts)
	require.NoError(t, err)
	return e
}

func TestOpenAIEmbedder_Batches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(fakeEmbeddings(t, 4, &calls))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, Options{Dimension: 4, BatchSize: 2})

	out, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, float32(1), out[0][0])
	assert.Equal(t, float32(2), out[1][0])
	assert.Equal(t, float32(3), out[2][0])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIEmbedder_RetriesServerErrors(t *testing.T) {
	var calls, failures int32
	ok := fakeEmbeddings(t, 2, &calls)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&failures, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		ok(w, r)
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, Options{Dimension: 2, MaxRetries: 2})

	v, err := e.EmbedOne(context.Background(), "salary")
	require.NoError(t, err)
	assert.Equal(t, float32(6), v[0])
	assert.Equal(t, int32(2), atomic.LoadInt32(&failures))
}

func TestOpenAIEmbedder_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad input"}}`))
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, Options{Dimension: 2, MaxRetries: 3})

	_, err := e.EmbedOne(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIEmbedder_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, Options{Dimension: 2, MaxRetries: 1})

	_, err := e.EmbedOne(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIEmbedder_DimensionMismatch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(fakeEmbeddings(t, 3, &calls))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, Options{Dimension: 8})

	_, err := e.EmbedOne(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)
}

func TestOpenAIEmbedder_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, Options{Dimension: 2, MaxRetries: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := e.EmbedOne(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenAIEmbedder_MissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := NewOpenAIEmbedder(testKeyEnv, Options{Model: "text-embedding-3-small"})
	assert.Error(t, err)
}

func TestOpenAIEmbedder_ModelDimensions(t *testing.T) {
	t.Setenv(testKeyEnv, "secret")

	e, err := NewOpenAIEmbedder(testKeyEnv, Options{Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, e.Dimension())
	assert.Equal(t, "text-embedding-3-large", e.ModelName())

	o, err := NewOllamaEmbedder(Options{Model: "all-minilm"})
	require.NoError(t, err)
	assert.Equal(t, 384, o.Dimension())
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig().Embedding

	e, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "hash", e.ModelName())

	cfg.Provider = "voyage"
	_, err = New(cfg)
	assert.Error(t, err)
}
