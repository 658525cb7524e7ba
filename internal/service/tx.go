package service

import "context"

// TxRunner executes a function within one database transaction.
// *repository.TxManager satisfies it in production.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
