package ml_service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/DRSN-tech/product-intelligence/pkg/textproc"
)

// HashingEmbedder строит векторы знаковым хешированием признаков: униграммы и биграммы слов
// раскладываются по dim корзинам с сублинейным весом 1+ln(tf). Не требует сети и детерминирован.
type HashingEmbedder struct {
	dim int
}

func NewHashingEmbedder(dim int) *HashingEmbedder {
	return &HashingEmbedder{dim: dim}
}

func (h *HashingEmbedder) Dimension() int { return h.dim }

func (h *HashingEmbedder) ModelVersion() string {
	return fmt.Sprintf("hashing-v1-%d", h.dim)
}

func (h *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = h.embed(text)
	}

	return vectors, nil
}

func (h *HashingEmbedder) embed(text string) []float32 {
	vec := make([]float32, h.dim)

	counts := make(map[string]int)
	tokens := textproc.Tokenize(text)
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+" "+tok]++
		}
	}

	for feature, tf := range counts {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(feature))
		sum := hasher.Sum64()

		bucket := sum % uint64(h.dim)
		weight := float32(1 + math.Log(float64(tf)))
		if sum>>63 == 1 {
			weight = -weight
		}
		vec[bucket] += weight
	}

	return vec
}
