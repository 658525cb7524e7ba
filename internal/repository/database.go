package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations repositories issue. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so every repository method runs either
// directly on the pool or inside a transaction carried through the context.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Database extends Querier with transaction support.
type Database interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txContextKey struct{}

// ContextWithTx stores a transaction in the context for repository calls.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext retrieves a transaction previously stored by ContextWithTx.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}

func querierFor(ctx context.Context, db Database) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// TxManager runs a function within a single database transaction.
type TxManager struct {
	db Database
}

// NewTxManager constructs a TxManager.
func NewTxManager(db Database) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a transaction, exposes it to repository calls via the
// context, and commits when fn returns nil. Any error rolls back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		// already transactional; join the outer transaction
		return fn(ctx)
	}
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
