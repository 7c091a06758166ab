package converter

import (
	"testing"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductConverter_ToEntity(t *testing.T) {
	conv := NewProductConverter()
	price := "19.99"
	categoryID := int64(3)
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	got, err := conv.ToEntity(&ProductModel{
		ID:         10,
		Title:      "Lamp",
		Tags:       []string{"home"},
		CategoryID: &categoryID,
		Price:      &price,
		Status:     "active",
		Rating:     4.5,
		SalesCount: 12,
		Images:     []string{"https://cdn/lamp.png"},
		CreatedAt:  created,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.CategoryID)
	assert.True(t, got.Price.Valid)
	assert.Equal(t, "19.99", got.Price.Decimal.String())
	assert.True(t, got.IsActive())
	assert.Equal(t, created, got.CreatedAt)
}

func TestProductConverter_NullableColumns(t *testing.T) {
	got, err := NewProductConverter().ToEntity(&ProductModel{ID: 1, Title: "x", Status: string(domain.ProductDraft)})
	require.NoError(t, err)

	assert.False(t, got.Price.Valid)
	assert.False(t, got.HasCategory())
	assert.Equal(t, []string{}, got.Tags)
	assert.Nil(t, got.ImageURL())
}

func TestProductConverter_InvalidPrice(t *testing.T) {
	bad := "NaN?"
	_, err := NewProductConverter().ToEntity(&ProductModel{ID: 1, Price: &bad})
	assert.Error(t, err)
}

func TestCategoryConverter(t *testing.T) {
	desc := "Gadgets"
	model := &CategoryModel{ID: 2, Name: "Electronics", Description: &desc, IsActive: true, ProductCount: 7}

	conv := NewCategoryConverter()
	assert.Equal(t, "Electronics", conv.ToEntity(model).Name)
	assert.Equal(t, domain.CategorySuggestion{ID: 2, Name: "Electronics", Description: &desc, ProductCount: 7}, conv.ToSuggestion(model))
}
