package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// GetName возвращает имя категории; false, если категории нет.
func (c *CategoryRepo) GetName(ctx context.Context, id int64) (string, bool, error) {
	query := `SELECT name FROM categories WHERE id = $1`

	var name string
	err := conn(ctx, c.pool).QueryRow(ctx, query, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, e.Wrap(whereami.WhereAmI(), err)
	}

	return name, true, nil
}

// Suggest ищет активные категории по подстроке имени без учёта регистра и считает их активные продукты.
func (c *CategoryRepo) Suggest(ctx context.Context, query string, limit int) ([]domain.CategorySuggestion, error) {
	sql := `
		SELECT c.id, c.name, c.description, c.created_at, c.updated_at, c.is_active,
		       COUNT(p.id) FILTER (WHERE p.status = 'active') AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		WHERE c.is_active
		  AND ($1 = '' OR c.name ILIKE '%' || $1 || '%')
		GROUP BY c.id
		ORDER BY c.name, c.id
		LIMIT $2
	`

	rows, err := conn(ctx, c.pool).Query(ctx, sql, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.CategorySuggestion, 0)
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &model.IsActive,
			&model.ProductCount,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, c.conv.ToSuggestion(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
