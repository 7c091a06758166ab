package converter

import "time"

// ProductModel представляет строку таблицы products. Цена читается как price::text.
type ProductModel struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Tags        []string  `db:"tags"`
	CategoryID  *int64    `db:"category_id"`
	Price       *string   `db:"price"`
	Status      string    `db:"status"`
	Rating      float64   `db:"rating"`
	SalesCount  int64     `db:"sales_count"`
	Images      []string  `db:"images"`
	CreatedAt   time.Time `db:"created_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Description  *string    `db:"description"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
	IsActive     bool       `db:"is_active"`
	ProductCount int64      `db:"product_count"`
}
