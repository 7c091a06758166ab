package domain

import "time"

// Category описывает категорию продукта
type Category struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	IsActive    bool
}

// CategorySuggestion — категория с количеством активных продуктов.
type CategorySuggestion struct {
	ID           int64
	Name         string
	Description  *string
	ProductCount int64
}
