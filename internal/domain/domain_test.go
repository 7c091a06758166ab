package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductRecord_Texts(t *testing.T) {
	desc := "Genuine cowhide"
	p := ProductRecord{Title: "Wallet", Description: &desc, Tags: []string{"leather", "men"}}

	assert.Equal(t, "Wallet Genuine cowhide", p.ClassificationText())
	assert.Equal(t, "Wallet Genuine cowhide leather men", p.EmbeddingText())

	bare := ProductRecord{Title: "Wallet"}
	assert.Equal(t, "Wallet", bare.EmbeddingText())
	assert.Nil(t, bare.ImageURL())
}

func TestNewRecommendation(t *testing.T) {
	p := ProductRecord{
		ID:     7,
		Title:  "Wallet",
		Price:  decimal.NewNullDecimal(decimal.RequireFromString("19.99")),
		Images: []string{"a.jpg", "b.jpg"},
	}

	rec := NewRecommendation(&p, 0.5, ReasonSimilar)
	assert.Equal(t, int64(7), rec.ProductID)
	assert.Equal(t, 19.99, rec.Price)
	assert.Equal(t, "a.jpg", *rec.ImageURL)
	assert.Equal(t, ReasonSimilar, rec.Reason)
}

func TestNewPrediction_ClampsConfidence(t *testing.T) {
	assert.Equal(t, 1.0, NewPrediction(1, 1.0000001).Confidence)
	assert.Equal(t, 0.0, NewPrediction(1, -0.1).Confidence)
	assert.True(t, NewPrediction(1, 0.4).OK)
	assert.False(t, NoPrediction().OK)
	assert.Zero(t, NoPrediction().Confidence)
}

func TestOrderStatus_IsPurchase(t *testing.T) {
	assert.True(t, OrderShipped.IsPurchase())
	assert.False(t, OrderPending.IsPurchase())
	assert.False(t, OrderCancelled.IsPurchase())
}
