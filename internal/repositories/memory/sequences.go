package memory

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// Increment is atomic under the store lock.
func (s *Store) Increment(ctx context.Context, scope domain.ScopeKey) (int64, error) {
	var next int64
	err := s.view(ctx, func(d *state) error {
		d.sequences[scope]++
		next = d.sequences[scope]
		return nil
	})
	return next, err
}

func (s *Store) Peek(ctx context.Context, scope domain.ScopeKey) (int64, error) {
	var last int64
	err := s.view(ctx, func(d *state) error {
		last = d.sequences[scope]
		return nil
	})
	return last, err
}
