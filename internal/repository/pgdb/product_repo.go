package pgdb

import (
	"context"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const productColumns = `
	p.id, p.title, p.description, p.tags, p.category_id, p.price::text,
	p.status, p.rating, p.sales_count, p.images, p.created_at
`

// ProductRepo реализует каталог продуктов поверх PostgreSQL.
// Внутри снимка (транзакция в контексте) запросы выполняются в этой транзакции.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// StreamActive построчно читает активные продукты по возрастанию id, не загружая выборку целиком.
func (p *ProductRepo) StreamActive(ctx context.Context, fn func(product *domain.ProductRecord) error) error {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.status = 'active'
		ORDER BY p.id
	`

	rows, err := conn(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := p.scan(rows)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if err := fn(product); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// GetByIDs возвращает продукты по id в любом статусе.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.ProductRecord, error) {
	result := make(map[int64]*domain.ProductRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = ANY($1)
	`

	products, err := p.list(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for _, product := range products {
		result[product.ID] = product
	}

	return result, nil
}

// TopRatedInCategory — активные продукты категории по rating desc, sales_count desc.
func (p *ProductRepo) TopRatedInCategory(ctx context.Context, categoryID int64, limit int) ([]*domain.ProductRecord, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.status = 'active' AND p.category_id = $1
		ORDER BY p.rating DESC, p.sales_count DESC, p.id
		LIMIT $2
	`

	products, err := p.list(ctx, query, categoryID, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// Popular — активные продукты по sales_count desc, rating desc.
func (p *ProductRepo) Popular(ctx context.Context, limit int) ([]*domain.ProductRecord, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.status = 'active'
		ORDER BY p.sales_count DESC, p.rating DESC, p.id
		LIMIT $1
	`

	products, err := p.list(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// NewArrivals — активные продукты по created_at desc с необязательным фильтром категории.
func (p *ProductRepo) NewArrivals(ctx context.Context, categoryID *int64, limit int) ([]*domain.ProductRecord, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.status = 'active'
		  AND ($1::bigint IS NULL OR p.category_id = $1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2
	`

	products, err := p.list(ctx, query, categoryID, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// CategoryTagSample возвращает списки тегов первых limit активных продуктов категории.
func (p *ProductRepo) CategoryTagSample(ctx context.Context, categoryID int64, limit int) ([][]string, error) {
	query := `
		SELECT p.tags
		FROM products p
		WHERE p.status = 'active' AND p.category_id = $1
		ORDER BY p.id
		LIMIT $2
	`

	rows, err := conn(ctx, p.pool).Query(ctx, query, categoryID, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tags, err := pgx.CollectRows(rows, pgx.RowTo[[]string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return tags, nil
}

// CategoryPrices возвращает цены активных продуктов категории, у которых цена задана.
func (p *ProductRepo) CategoryPrices(ctx context.Context, categoryID int64) ([]decimal.Decimal, error) {
	query := `
		SELECT p.price::text
		FROM products p
		WHERE p.status = 'active' AND p.category_id = $1 AND p.price IS NOT NULL
	`

	rows, err := conn(ctx, p.pool).Query(ctx, query, categoryID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	prices := make([]decimal.Decimal, 0, len(raw))
	for _, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		prices = append(prices, d)
	}

	return prices, nil
}

func (p *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ProductRecord, error) {
	rows, err := conn(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.ProductRecord, 0)
	for rows.Next() {
		product, err := p.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, product)
	}

	return result, rows.Err()
}

func (p *ProductRepo) scan(rows pgx.Rows) (*domain.ProductRecord, error) {
	var model converter.ProductModel
	if err := rows.Scan(
		&model.ID, &model.Title, &model.Description, &model.Tags, &model.CategoryID, &model.Price,
		&model.Status, &model.Rating, &model.SalesCount, &model.Images, &model.CreatedAt,
	); err != nil {
		return nil, err
	}

	return p.conv.ToEntity(&model)
}
