package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/DRSN-tech/product-intelligence/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// querier — общее подмножество pgxpool.Pool и pgx.Tx, которым пользуются репозитории.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// conn возвращает транзакцию из контекста, а без неё — пул.
func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}
	return pool
}

// Snapshotter открывает read-only транзакцию repeatable read, чтобы сборка видела согласованный каталог.
type Snapshotter struct {
	db     transaction.Transactional
	logger logger.Logger
}

func NewSnapshotter(db transaction.Transactional, logger logger.Logger) *Snapshotter {
	return &Snapshotter{db: db, logger: logger}
}

func (s *Snapshotter) InSnapshot(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	opts := pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}

	ctx, tx, err := transaction.NewTransaction(ctx, opts, s.db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() {
		if tx.IsActive() {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warnf("failed to rollback snapshot transaction: %v", rbErr)
			}
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("unexpected transaction type %T", tx.Transaction()))
	}

	if err = fn(tr.WithTx(ctx, pgxTx)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
