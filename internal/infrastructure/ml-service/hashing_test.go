package ml_service

import (
	"context"
	"testing"

	"github.com/DRSN-tech/product-intelligence/pkg/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	a, b = vectorindex.Normalize(a), vectorindex.Normalize(b)
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	emb := NewHashingEmbedder(64)

	first, err := emb.Embed(context.Background(), []string{"Leather wallet brown", ""})
	require.NoError(t, err)
	second, err := emb.Embed(context.Background(), []string{"Leather wallet brown", ""})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Len(t, first[0], 64)
	assert.Equal(t, make([]float32, 64), first[1])
	assert.Equal(t, "hashing-v1-64", emb.ModelVersion())
}

func TestHashingEmbedder_SimilarTextsAreCloser(t *testing.T) {
	emb := NewHashingEmbedder(384)

	vecs, err := emb.Embed(context.Background(), []string{
		"wireless bluetooth headphones with noise cancelling",
		"bluetooth wireless headphones noise cancelling black",
		"cast iron skillet for camping",
	})
	require.NoError(t, err)

	assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
}

func TestHashingEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHashingEmbedder(8).Embed(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}
