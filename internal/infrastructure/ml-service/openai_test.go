package ml_service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIEmbedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	emb := NewOpenAIEmbedder(&cfg.EmbeddingCfg{
		APIKey:     "sk-test",
		BaseURL:    srv.URL + "/v1",
		Model:      "text-embedding-3-small",
		VectorSize: 2,
		MaxRetries: 3,
	}, logger.NewNop())
	emb.baseDelay = time.Millisecond
	emb.maxDelay = 5 * time.Millisecond

	return emb
}

func writeEmbeddings(w http.ResponseWriter, items []embeddingItem) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   items,
		"model":  "text-embedding-3-small",
	})
}

func TestOpenAIEmbedder_PreservesOrder(t *testing.T) {
	emb := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"first", "second"}, req.Input)
		assert.Equal(t, 2, req.Dimensions)

		writeEmbeddings(w, []embeddingItem{
			{Object: "embedding", Embedding: []float32{0, 1}, Index: 1},
			{Object: "embedding", Embedding: []float32{1, 0}, Index: 0},
		})
	})

	vecs, err := emb.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestOpenAIEmbedder_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	emb := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		writeEmbeddings(w, []embeddingItem{{Object: "embedding", Embedding: []float32{1, 1}, Index: 0}})
	})

	vecs, err := emb.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIEmbedder_WrongDimensionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	emb := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEmbeddings(w, []embeddingItem{{Object: "embedding", Embedding: []float32{1, 1, 1}, Index: 0}})
	})

	_, err := emb.Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, e.ErrIndexDimension)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIEmbedder_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	emb := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad input","type":"invalid_request_error"}}`))
	})

	_, err := emb.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
