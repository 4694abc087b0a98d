package repositories

import (
	"context"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithinTx runs fn inside one database transaction carried by the returned context.
	// Every repository call made with that context joins the transaction. The transaction
	// commits when fn returns nil and rolls back otherwise, including on context cancellation.
	// If ctx already carries a transaction, fn joins it and the outermost call decides the outcome.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
