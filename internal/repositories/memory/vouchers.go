package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

func (s *Store) SaveVoucher(ctx context.Context, v domain.Voucher) error {
	return s.view(ctx, func(d *state) error {
		if _, exists := d.vouchers[v.VoucherID]; exists {
			return fmt.Errorf("%w: voucher %s already exists", apperrors.ErrConflict, v.VoucherID)
		}
		d.vouchers[v.VoucherID] = *v.Clone()
		return nil
	})
}

func (s *Store) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	var out *domain.Voucher
	err := s.view(ctx, func(d *state) error {
		v, ok := d.vouchers[voucherID]
		if !ok {
			return fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
		}
		out = v.Clone()
		return nil
	})
	return out, err
}

// FindVoucherByIDForUpdate is FindVoucherByID; the transaction already holds the store lock.
func (s *Store) FindVoucherByIDForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return s.FindVoucherByID(ctx, voucherID)
}

func (s *Store) FindActiveReversalOf(ctx context.Context, originalVoucherID string) (*domain.Voucher, error) {
	var out *domain.Voucher
	err := s.view(ctx, func(d *state) error {
		for _, v := range d.vouchers {
			if v.ReversalOf == nil || *v.ReversalOf != originalVoucherID {
				continue
			}
			if v.Status == domain.VoucherCancelled || v.Status == domain.VoucherRejected {
				continue
			}
			out = v.Clone()
			return nil
		}
		return fmt.Errorf("%w: no reversal of %s", apperrors.ErrNotFound, originalVoucherID)
	})
	return out, err
}

func (s *Store) UpdateVoucher(ctx context.Context, v domain.Voucher, expectedVersion int) error {
	return s.view(ctx, func(d *state) error {
		current, ok := d.vouchers[v.VoucherID]
		if !ok {
			return fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, v.VoucherID)
		}
		if current.Version != expectedVersion {
			return fmt.Errorf("%w: voucher %s is at version %d, expected %d", apperrors.ErrConflict, v.VoucherID, current.Version, expectedVersion)
		}
		d.vouchers[v.VoucherID] = *v.Clone()
		return nil
	})
}
