package services

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// LedgerEntryValidator checks the structure and balance of voucher lines.
type LedgerEntryValidator interface {
	// Validate returns nil only for a non-empty, structurally valid and balanced set of lines.
	Validate(ctx context.Context, lines []domain.VoucherLine) error
}

// NumberingService issues document numbers.
type NumberingService interface {
	// Next consumes and returns the next identifier of the scope.
	Next(ctx context.Context, scope domain.ScopeKey) (domain.Identifier, error)

	// Preview returns the identifier Next would return now, without consuming it.
	Preview(ctx context.Context, scope domain.ScopeKey) (domain.Identifier, error)
}

// AuditRecord is the content of an audit entry before it is chained.
type AuditRecord struct {
	Action       domain.AuditAction
	Actor        string
	Origin       string
	StatusBefore string
	StatusAfter  string
	Comment      string
	Payload      any
}

// AuditVerification summarizes a chain walk.
type AuditVerification struct {
	StreamID string `json:"streamID"`
	Entries  int    `json:"entries"`
	Head     string `json:"head"`
}

// AuditTrail is the append-only record of state changes.
type AuditTrail interface {
	// Record chains a new entry onto the stream. It joins the transaction carried by ctx.
	Record(ctx context.Context, streamID string, rec AuditRecord) (*domain.AuditEntry, error)

	// Entries returns the stream in order.
	Entries(ctx context.Context, streamID string) ([]domain.AuditEntry, error)

	// Verify walks the stream and returns apperrors.ErrAuditChainBroken at the first bad link.
	Verify(ctx context.Context, streamID string) (*AuditVerification, error)
}
