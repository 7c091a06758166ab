package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus — статус продукта в каталоге.
type ProductStatus string

const (
	ProductDraft    ProductStatus = "draft"
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductArchived ProductStatus = "archived"
)

// ProductRecord описывает продукт каталога в том виде, в котором его видит движок.
// В сборке индекса и моделей участвуют только продукты со статусом active.
type ProductRecord struct {
	ID          int64
	Title       string
	Description *string
	Tags        []string
	CategoryID  int64 // 0 — без категории
	Price       decimal.NullDecimal
	Status      ProductStatus
	Rating      float64
	SalesCount  int64
	CreatedAt   time.Time
	Images      []string
}

func (p *ProductRecord) IsActive() bool {
	return p.Status == ProductActive
}

// HasCategory сообщает, привязан ли продукт к категории.
func (p *ProductRecord) HasCategory() bool {
	return p.CategoryID > 0
}

// ImageURL возвращает первое изображение продукта или nil.
func (p *ProductRecord) ImageURL() *string {
	if len(p.Images) == 0 {
		return nil
	}
	url := p.Images[0]
	return &url
}

// ClassificationText — текст для классификатора: заголовок и описание.
func (p *ProductRecord) ClassificationText() string {
	return JoinText(p.Title, p.Description)
}

// EmbeddingText — текст для эмбеддинга: заголовок, описание и теги.
func (p *ProductRecord) EmbeddingText() string {
	text := p.ClassificationText()
	if len(p.Tags) > 0 {
		text += " " + strings.Join(p.Tags, " ")
	}
	return text
}

// JoinText склеивает заголовок и необязательное описание через пробел.
func JoinText(title string, description *string) string {
	if description == nil || *description == "" {
		return title
	}
	return title + " " + *description
}
