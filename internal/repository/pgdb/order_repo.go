package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo читает историю покупок.
type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func purchasedStatuses() []string {
	out := make([]string, len(domain.PurchasedStatuses))
	for i, s := range domain.PurchasedStatuses {
		out[i] = string(s)
	}
	return out
}

// PurchasedProductIDs возвращает уникальные id купленных пользователем продуктов в порядке первой покупки.
func (o *OrderRepo) PurchasedProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT oi.product_id
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.user_id = $1 AND o.status = ANY($2)
		GROUP BY oi.product_id
		ORDER BY MIN(o.created_at), MIN(oi.id)
	`

	rows, err := conn(ctx, o.pool).Query(ctx, query, userID, purchasedStatuses())
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return ids, nil
}

// PurchasesSince возвращает строки заказов в статусе покупки, созданных не раньше since.
func (o *OrderRepo) PurchasesSince(ctx context.Context, since time.Time) ([]domain.PurchaseLine, error) {
	query := `
		SELECT oi.product_id, oi.quantity, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.status = ANY($2)
	`

	rows, err := conn(ctx, o.pool).Query(ctx, query, since, purchasedStatuses())
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.PurchaseLine, 0)
	for rows.Next() {
		var line domain.PurchaseLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.OrderedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, line)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
