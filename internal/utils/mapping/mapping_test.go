package mapping_test

import (
	"testing"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/SscSPs/voucher_engine/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherLinesStoreAmountAndType(t *testing.T) {
	v := domain.Voucher{
		VoucherID: "v1",
		Lines: []domain.VoucherLine{
			{LineNo: 1, AccountID: "1100", Debit: decimal.RequireFromString("12.50"), Credit: decimal.Zero},
			{LineNo: 2, AccountID: "4000", Debit: decimal.Zero, Credit: decimal.RequireFromString("12.50"), Memo: "sale"},
		},
	}

	rows := mapping.ToModelVoucherLineSlice(v)
	require.Len(t, rows, 2)
	assert.Equal(t, models.Debit, rows[0].LineType)
	assert.Equal(t, models.Credit, rows[1].LineType)
	assert.True(t, rows[1].Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "v1", rows[1].VoucherID)

	back := mapping.ToDomainVoucherLineSlice(rows)
	assert.True(t, back[0].Debit.Equal(v.Lines[0].Debit))
	assert.True(t, back[0].Credit.IsZero())
	assert.True(t, back[1].Credit.Equal(v.Lines[1].Credit))
	assert.Equal(t, "sale", back[1].Memo)
}

func TestVoucherNumberIsNullUntilPosted(t *testing.T) {
	m := mapping.ToModelVoucher(domain.Voucher{VoucherID: "v1"})
	assert.Nil(t, m.Number)

	m = mapping.ToModelVoucher(domain.Voucher{VoucherID: "v1", Number: "JV-2026-000001"})
	require.NotNil(t, m.Number)
	assert.Equal(t, "JV-2026-000001", mapping.ToDomainVoucher(m, nil).Number)
}

func TestApprovalRequestCurrentApprover(t *testing.T) {
	r := domain.ApprovalRequest{
		RequestID:    "r1",
		Status:       domain.RequestPending,
		CurrentLevel: 2,
		Steps: []domain.ApprovalStep{
			{Level: 1, ApproverUserID: "bob"},
			{Level: 2, ApproverRole: "finance_manager"},
		},
	}

	m := mapping.ToModelApprovalRequest(r)
	assert.Equal(t, "", m.CurrentApproverUser)
	assert.Equal(t, "finance_manager", m.CurrentApproverRole)

	r.Status = domain.RequestApproved
	m = mapping.ToModelApprovalRequest(r)
	assert.Empty(t, m.CurrentApproverRole, "finalized requests await nobody")
}

func TestApprovalWorkflowUnboundedLevel(t *testing.T) {
	maxAmount := decimal.RequireFromString("1000")
	w := domain.ApprovalWorkflow{
		WorkflowID: "wf",
		Levels: []domain.ApprovalLevel{
			{Level: 1, MaxAmount: &maxAmount, ApproverUserID: "bob"},
			{Level: 2, ApproverRole: "cfo"},
		},
	}

	header, levels := mapping.ToModelApprovalWorkflow(w)
	assert.Equal(t, string(domain.BoundaryLower), header.BoundaryInclusion)
	assert.True(t, levels[0].MaxAmount.Valid)
	assert.False(t, levels[1].MaxAmount.Valid)

	back := mapping.ToDomainApprovalWorkflow(header, levels)
	require.NotNil(t, back.Levels[0].MaxAmount)
	assert.True(t, back.Levels[0].MaxAmount.Equal(maxAmount))
	assert.Nil(t, back.Levels[1].MaxAmount)
}
