package repositories

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// AuditRepository persists append-only audit streams.
type AuditRepository interface {
	// LastEntry returns the newest entry of a stream, or nil when the stream is empty.
	LastEntry(ctx context.Context, streamID string) (*domain.AuditEntry, error)

	// AppendEntry inserts an entry. A taken (stream, seq) pair returns apperrors.ErrConflict.
	AppendEntry(ctx context.Context, entry domain.AuditEntry) error

	// ListEntries returns a stream in sequence order.
	ListEntries(ctx context.Context, streamID string) ([]domain.AuditEntry, error)
}
