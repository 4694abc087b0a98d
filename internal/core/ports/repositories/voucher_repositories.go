package repositories

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// VoucherReader defines read operations for voucher data
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher with its lines.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// FindVoucherByIDForUpdate retrieves a voucher and locks its row until the surrounding transaction ends.
	FindVoucherByIDForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// FindActiveReversalOf returns the non-cancelled, non-rejected reversal of a voucher, or ErrNotFound.
	FindActiveReversalOf(ctx context.Context, originalVoucherID string) (*domain.Voucher, error)
}

// VoucherWriter defines write operations for voucher data
type VoucherWriter interface {
	// SaveVoucher inserts a new voucher and its lines.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucher replaces the header and lines of a voucher if its stored version equals expectedVersion.
	// The stored version becomes voucher.Version. A version mismatch returns apperrors.ErrConflict.
	UpdateVoucher(ctx context.Context, voucher domain.Voucher, expectedVersion int) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
