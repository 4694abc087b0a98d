package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

func (s *Store) LastEntry(ctx context.Context, streamID string) (*domain.AuditEntry, error) {
	var out *domain.AuditEntry
	err := s.view(ctx, func(d *state) error {
		stream := d.audit[streamID]
		if len(stream) > 0 {
			e := stream[len(stream)-1]
			out = &e
		}
		return nil
	})
	return out, err
}

func (s *Store) AppendEntry(ctx context.Context, e domain.AuditEntry) error {
	return s.view(ctx, func(d *state) error {
		stream := d.audit[e.StreamID]
		if e.Seq != int64(len(stream)+1) {
			return fmt.Errorf("%w: audit stream %s is at seq %d", apperrors.ErrConflict, e.StreamID, len(stream))
		}
		d.audit[e.StreamID] = append(stream, e)
		return nil
	})
}

func (s *Store) ListEntries(ctx context.Context, streamID string) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	err := s.view(ctx, func(d *state) error {
		out = append([]domain.AuditEntry(nil), d.audit[streamID]...)
		return nil
	})
	return out, err
}
