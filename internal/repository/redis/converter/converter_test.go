package converter

import (
	"testing"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecommendationConverter(t *testing.T) {
	conv := NewRecommendationConverter()
	img := "https://cdn.example.com/1.png"

	recs := []domain.Recommendation{
		{ProductID: 1, Title: "Phone", Price: 199.99, ImageURL: &img, Score: 0.9, Reason: domain.ReasonSimilar},
		{ProductID: 2, Title: "Case", Score: 1, Reason: domain.ReasonNewArrival},
	}

	models := conv.ToArrRedisModel(recs)
	assert.Equal(t, "similar item", models[0].Reason)
	assert.Nil(t, models[1].ImageURL)

	assert.Equal(t, recs, conv.ToArrEntity(models))
	assert.Nil(t, conv.ToArrEntity(nil))
}
