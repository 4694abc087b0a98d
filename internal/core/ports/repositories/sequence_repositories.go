package repositories

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// SequenceRepository stores one counter per numbering scope.
type SequenceRepository interface {
	// Increment atomically adds one to the scope's counter, creating it at 1, and returns the new value.
	Increment(ctx context.Context, scope domain.ScopeKey) (int64, error)

	// Peek returns the last issued value of the scope, 0 if nothing was issued.
	Peek(ctx context.Context, scope domain.ScopeKey) (int64, error)
}
