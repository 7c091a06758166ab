package converter

import (
	"fmt"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует строки products в записи каталога.
type ProductConverter interface {
	ToEntity(model *ProductModel) (*domain.ProductRecord, error)
}

// CategoryConverter преобразует записи categories в доменные сущности.
type CategoryConverter interface {
	ToEntity(model *CategoryModel) *domain.Category
	ToSuggestion(model *CategoryModel) domain.CategorySuggestion
}

type productConverter struct{}

func NewProductConverter() ProductConverter {
	return productConverter{}
}

func (productConverter) ToEntity(model *ProductModel) (*domain.ProductRecord, error) {
	const op = "ProductConverter.ToEntity"

	var price decimal.NullDecimal
	if model.Price != nil {
		d, err := decimal.NewFromString(*model.Price)
		if err != nil {
			return nil, e.Wrap(op, fmt.Errorf("product %d: invalid price %q: %w", model.ID, *model.Price, err))
		}
		price = decimal.NewNullDecimal(d)
	}

	var categoryID int64
	if model.CategoryID != nil {
		categoryID = *model.CategoryID
	}

	tags := model.Tags
	if tags == nil {
		tags = []string{}
	}

	return &domain.ProductRecord{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Tags:        tags,
		CategoryID:  categoryID,
		Price:       price,
		Status:      domain.ProductStatus(model.Status),
		Rating:      model.Rating,
		SalesCount:  model.SalesCount,
		CreatedAt:   model.CreatedAt,
		Images:      model.Images,
	}, nil
}

type categoryConverter struct{}

func NewCategoryConverter() CategoryConverter {
	return categoryConverter{}
}

func (categoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		IsActive:    model.IsActive,
	}
}

func (categoryConverter) ToSuggestion(model *CategoryModel) domain.CategorySuggestion {
	return domain.CategorySuggestion{
		ID:           model.ID,
		Name:         model.Name,
		Description:  model.Description,
		ProductCount: model.ProductCount,
	}
}
