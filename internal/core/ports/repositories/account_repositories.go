package repositories

import (
	"context"
)

// AccountDirectory answers the only account questions the posting engine asks.
// The chart of accounts itself is managed elsewhere.
type AccountDirectory interface {
	// Exists reports whether the account is known.
	Exists(ctx context.Context, accountID string) (bool, error)

	// IsLeafAccount reports whether the account may carry postings (it is not a group account).
	IsLeafAccount(ctx context.Context, accountID string) (bool, error)
}
