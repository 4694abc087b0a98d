package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// DefaultMinorUnitScale is the number of fractional digits allowed when none is configured.
const DefaultMinorUnitScale int32 = 2

// ledgerValidator checks voucher lines against the account directory and the
// double-entry invariant.
type ledgerValidator struct {
	BaseService
	accounts portsrepo.AccountDirectory
	scale    int32
}

// NewLedgerValidator creates a validator. scale is the number of fractional digits
// an amount may carry (2 for cents).
func NewLedgerValidator(accounts portsrepo.AccountDirectory, scale int32) portssvc.LedgerEntryValidator {
	if scale < 0 {
		scale = DefaultMinorUnitScale
	}
	return &ledgerValidator{accounts: accounts, scale: scale}
}

// Validate checks structure, then accounts, then balance, reporting the first failure.
func (v *ledgerValidator) Validate(ctx context.Context, lines []domain.VoucherLine) error {
	if err := CheckLines(lines, v.scale); err != nil {
		return err
	}

	for i, line := range lines {
		exists, err := v.accounts.Exists(ctx, line.AccountID)
		if err != nil {
			v.LogError(ctx, err, "Account lookup failed", slog.String("account_id", line.AccountID))
			return fmt.Errorf("failed to look up account %s: %w", line.AccountID, err)
		}
		if !exists {
			return &apperrors.InvalidLineError{Index: i, Reason: fmt.Sprintf("unknown account %s", line.AccountID)}
		}
		leaf, err := v.accounts.IsLeafAccount(ctx, line.AccountID)
		if err != nil {
			v.LogError(ctx, err, "Account lookup failed", slog.String("account_id", line.AccountID))
			return fmt.Errorf("failed to look up account %s: %w", line.AccountID, err)
		}
		if !leaf {
			return &apperrors.InvalidLineError{Index: i, Reason: fmt.Sprintf("account %s is a group account", line.AccountID)}
		}
	}

	return CheckBalance(lines)
}

// CheckLines validates the shape of every line without any lookup.
func CheckLines(lines []domain.VoucherLine, scale int32) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: a voucher needs at least one line", apperrors.ErrValidation)
	}
	for i, l := range lines {
		if reason := lineProblem(l, scale); reason != "" {
			return &apperrors.InvalidLineError{Index: i, Reason: reason}
		}
	}
	return nil
}

func lineProblem(l domain.VoucherLine, scale int32) string {
	switch {
	case l.AccountID == "":
		return "missing account"
	case l.Debit.IsNegative() || l.Credit.IsNegative():
		return "negative amount"
	case l.Debit.IsZero() && l.Credit.IsZero():
		return "zero amount"
	case l.Debit.IsPositive() && l.Credit.IsPositive():
		return "both debit and credit set"
	case !inMinorUnits(l.Amount(), scale):
		return fmt.Sprintf("amount %s has more than %d decimal places", l.Amount().String(), scale)
	}
	return ""
}

func inMinorUnits(amount decimal.Decimal, scale int32) bool {
	return amount.Equal(amount.Truncate(scale))
}

// CheckBalance compares total debit and total credit at full precision.
func CheckBalance(lines []domain.VoucherLine) error {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !debit.Equal(credit) {
		return &apperrors.BalanceMismatchError{TotalDebit: debit, TotalCredit: credit}
	}
	return nil
}
