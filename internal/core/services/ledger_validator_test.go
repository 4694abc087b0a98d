package services_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_engine/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock AccountDirectory ---
type MockAccountDirectory struct {
	mock.Mock
}

var _ portsrepo.AccountDirectory = (*MockAccountDirectory)(nil)

func (m *MockAccountDirectory) Exists(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountDirectory) IsLeafAccount(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func line(account, debit, credit string) domain.VoucherLine {
	return domain.VoucherLine{AccountID: account, Debit: dec(debit), Credit: dec(credit)}
}

func TestCheckLines(t *testing.T) {
	tests := []struct {
		name       string
		lines      []domain.VoucherLine
		wantIndex  int
		wantReason string
	}{
		{"missing account", []domain.VoucherLine{line("1100", "10", "0"), line("", "0", "10")}, 1, "missing account"},
		{"zero amount", []domain.VoucherLine{line("1100", "0", "0")}, 0, "zero amount"},
		{"negative amount", []domain.VoucherLine{line("1100", "-5", "0")}, 0, "negative amount"},
		{"both sides", []domain.VoucherLine{line("1100", "5", "5")}, 0, "both debit and credit set"},
		{"sub minor unit", []domain.VoucherLine{line("1100", "0", "1"), line("4000", "0.001", "0")}, 1, "amount 0.001 has more than 2 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.CheckLines(tt.lines, 2)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidLine)

			var lineErr *apperrors.InvalidLineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.wantIndex, lineErr.Index)
			assert.Equal(t, tt.wantReason, lineErr.Reason)
		})
	}

	t.Run("empty", func(t *testing.T) {
		err := services.CheckLines(nil, 2)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCheckBalance_Mismatch(t *testing.T) {
	err := services.CheckBalance([]domain.VoucherLine{line("1100", "100.00", "0"), line("4000", "0", "99.99")})

	var mismatch *apperrors.BalanceMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Difference().Equal(dec("0.01")))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

// randomBalanced builds n debit lines and a set of credit lines with the same total.
func randomBalanced(r *rand.Rand, n int) []domain.VoucherLine {
	var lines []domain.VoucherLine
	total := decimal.Zero
	for i := 0; i < n; i++ {
		amt := decimal.New(r.Int63n(10_000_000)+1, -2)
		total = total.Add(amt)
		lines = append(lines, domain.VoucherLine{AccountID: "1100", Debit: amt})
	}
	remaining := total
	for remaining.IsPositive() {
		part := decimal.New(r.Int63n(remaining.Shift(2).IntPart())+1, -2)
		remaining = remaining.Sub(part)
		lines = append(lines, domain.VoucherLine{AccountID: "4000", Credit: part})
	}
	r.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
	return lines
}

func TestValidate_BalancedIffAccepted(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountDirectory)
	accounts.On("Exists", mock.Anything, mock.Anything).Return(true, nil)
	accounts.On("IsLeafAccount", mock.Anything, mock.Anything).Return(true, nil)
	validator := services.NewLedgerValidator(accounts, 2)

	r := rand.New(rand.NewSource(42))
	oneCent := decimal.New(1, -2)
	for i := 0; i < 200; i++ {
		lines := randomBalanced(r, r.Intn(5)+1)
		require.NoError(t, validator.Validate(ctx, lines), "iteration %d", i)

		// any single minor-unit perturbation unbalances the voucher
		idx := r.Intn(len(lines))
		perturbed := append([]domain.VoucherLine(nil), lines...)
		if perturbed[idx].IsDebit() {
			perturbed[idx].Debit = perturbed[idx].Debit.Add(oneCent)
		} else {
			perturbed[idx].Credit = perturbed[idx].Credit.Add(oneCent)
		}
		err := validator.Validate(ctx, perturbed)
		var mismatch *apperrors.BalanceMismatchError
		require.ErrorAs(t, err, &mismatch, "iteration %d", i)
		assert.True(t, mismatch.Difference().Abs().Equal(oneCent))
	}
}

func TestValidate_AccountChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown account", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		accounts.On("Exists", ctx, "1100").Return(true, nil).Once()
		accounts.On("IsLeafAccount", ctx, "1100").Return(true, nil).Once()
		accounts.On("Exists", ctx, "9999").Return(false, nil).Once()

		err := services.NewLedgerValidator(accounts, 2).Validate(ctx, []domain.VoucherLine{line("1100", "10", "0"), line("9999", "0", "10")})
		var lineErr *apperrors.InvalidLineError
		require.ErrorAs(t, err, &lineErr)
		assert.Equal(t, 1, lineErr.Index)
		assert.Contains(t, lineErr.Reason, "unknown account")
		accounts.AssertExpectations(t)
	})

	t.Run("group account", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		accounts.On("Exists", ctx, "1000").Return(true, nil).Once()
		accounts.On("IsLeafAccount", ctx, "1000").Return(false, nil).Once()

		err := services.NewLedgerValidator(accounts, 2).Validate(ctx, []domain.VoucherLine{line("1000", "10", "0"), line("4000", "0", "10")})
		var lineErr *apperrors.InvalidLineError
		require.ErrorAs(t, err, &lineErr)
		assert.Equal(t, 0, lineErr.Index)
		assert.Contains(t, lineErr.Reason, "group account")
		accounts.AssertExpectations(t)
	})

	t.Run("directory failure", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		dbErr := errors.New("connection reset")
		accounts.On("Exists", ctx, "1100").Return(false, dbErr).Once()

		err := services.NewLedgerValidator(accounts, 2).Validate(ctx, []domain.VoucherLine{line("1100", "10", "0"), line("4000", "0", "10")})
		assert.ErrorIs(t, err, dbErr)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	})

	t.Run("structure checked before lookups", func(t *testing.T) {
		accounts := new(MockAccountDirectory)
		err := services.NewLedgerValidator(accounts, 2).Validate(ctx, []domain.VoucherLine{line("1100", "0", "0")})
		assert.ErrorIs(t, err, apperrors.ErrInvalidLine)
		accounts.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})
}
