package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jnst/cloudgames-library/internal/db"
)

type txKey struct{}

// TransactionManagerImpl implements TransactionManager using PostgreSQL.
type TransactionManagerImpl struct {
	pool *pgxpool.Pool
}

// NewTransactionManagerImpl creates a new TransactionManager implementation.
func NewTransactionManagerImpl(pool *pgxpool.Pool) TransactionManager {
	return &TransactionManagerImpl{pool: pool}
}

// WithTransaction executes a function within a database transaction.
// Repositories called with the ctx passed to fn run inside the transaction.
func (tm *TransactionManagerImpl) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rollbackErr)
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// queries returns q bound to the transaction carried by ctx, if any.
func queries(ctx context.Context, q *db.Queries) *db.Queries {
	if tx, ok := txFromContext(ctx); ok {
		return q.WithTx(tx)
	}

	return q
}
