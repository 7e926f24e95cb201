package repositories

import "context"

// TransactionManager runs a unit of work atomically.
//
// Repositories called with the ctx handed to fn join the same transaction, so
// services can compose several repository calls without passing a tx around.
// Calling WithinTx with a ctx that already carries a transaction reuses it.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
