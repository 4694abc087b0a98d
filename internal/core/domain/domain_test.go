package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestResolveLevels_SortsByUpperBound(t *testing.T) {
	w := domain.ApprovalWorkflow{
		Levels: []domain.ApprovalLevel{
			{Level: 3, ApproverRole: "cfo"},
			{Level: 2, MaxAmount: ptr("10000"), ApproverRole: "controller"},
			{Level: 1, MinAmount: decimal.NewFromInt(1), MaxAmount: ptr("1000"), ApproverRole: "manager"},
		},
	}

	tests := []struct {
		amount string
		roles  []string
		ok     bool
	}{
		{"0.99", nil, false},
		{"1", []string{"manager"}, true},
		{"1000", []string{"manager"}, true},
		{"1000.01", []string{"manager", "controller"}, true},
		{"250000", []string{"manager", "controller", "cfo"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			levels, ok := w.ResolveLevels(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.ok, ok)
			var roles []string
			for _, l := range levels {
				roles = append(roles, l.ApproverRole)
			}
			assert.Equal(t, tt.roles, roles)
		})
	}

	_, ok := domain.ApprovalWorkflow{}.ResolveLevels(decimal.NewFromInt(1))
	assert.False(t, ok, "a workflow without levels matches nothing")
}

func TestExceedsCeiling(t *testing.T) {
	bounded := domain.ApprovalWorkflow{
		Levels: []domain.ApprovalLevel{
			{Level: 2, MaxAmount: ptr("10000"), ApproverRole: "controller"},
			{Level: 1, MaxAmount: ptr("1000"), ApproverRole: "manager"},
		},
	}

	_, ok := bounded.ResolveLevels(decimal.RequireFromString("10000.01"))
	assert.False(t, ok)
	assert.True(t, bounded.ExceedsCeiling(decimal.RequireFromString("10000.01")))
	assert.False(t, bounded.ExceedsCeiling(decimal.RequireFromString("10000")))

	var roles []string
	for _, l := range bounded.FullChain() {
		roles = append(roles, l.ApproverRole)
	}
	assert.Equal(t, []string{"manager", "controller"}, roles)

	open := domain.ApprovalWorkflow{
		Levels: []domain.ApprovalLevel{
			{Level: 1, MaxAmount: ptr("1000"), ApproverRole: "manager"},
			{Level: 2, ApproverRole: "cfo"},
		},
	}
	assert.False(t, open.ExceedsCeiling(decimal.RequireFromString("1000000")), "an unbounded top level has no ceiling")
	assert.False(t, domain.ApprovalWorkflow{}.ExceedsCeiling(decimal.NewFromInt(1)))
}

func TestStepsFromLevels_Renumbers(t *testing.T) {
	steps := domain.StepsFromLevels([]domain.ApprovalLevel{
		{Level: 5, ApproverUserID: "bob"},
		{Level: 9, ApproverRole: "cfo"},
	})
	assert.Equal(t, []domain.ApprovalStep{
		{Level: 1, ApproverUserID: "bob"},
		{Level: 2, ApproverRole: "cfo"},
	}, steps)
}

func TestReplay(t *testing.T) {
	initial := domain.ApprovalRequest{
		RequestID:    "r1",
		Steps:        []domain.ApprovalStep{{Level: 1}, {Level: 2}},
		CurrentLevel: 1,
		Status:       domain.RequestPending,
	}
	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	dave := "dave"

	tests := []struct {
		name      string
		actions   []domain.ApprovalAction
		status    domain.ApprovalRequestStatus
		level     int
		delegated *string
	}{
		{"no actions", nil, domain.RequestPending, 1, nil},
		{"one approval", []domain.ApprovalAction{{Action: domain.ActionApprove, OccurredAt: at}}, domain.RequestPending, 2, nil},
		{"delegated", []domain.ApprovalAction{{Action: domain.ActionDelegate, DelegatedTo: &dave}}, domain.RequestPending, 1, &dave},
		{"delegation cleared by approval", []domain.ApprovalAction{
			{Action: domain.ActionDelegate, DelegatedTo: &dave},
			{Action: domain.ActionApprove},
		}, domain.RequestPending, 2, nil},
		{"fully approved", []domain.ApprovalAction{{Action: domain.ActionApprove}, {Action: domain.ActionApprove, OccurredAt: at}}, domain.RequestApproved, 2, nil},
		{"rejected", []domain.ApprovalAction{{Action: domain.ActionApprove}, {Action: domain.ActionReject, OccurredAt: at}}, domain.RequestRejected, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Replay(initial, tt.actions)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.level, got.CurrentLevel)
			assert.Equal(t, tt.delegated, got.DelegatedTo)
			assert.Equal(t, got.Status != domain.RequestPending, got.FinalizedAt != nil)
		})
	}
}

func TestNumberFormat(t *testing.T) {
	scope := domain.ScopeKey{Entity: "ACME", DocumentType: "INV", FiscalYear: 2026}
	tests := []struct {
		name   string
		format domain.NumberFormat
		value  int64
		want   string
	}{
		{"default shape", domain.NumberFormat{Separator: "-", Padding: 6, IncludeFiscalYear: true}, 41, "INV-2026-000041"},
		{"custom prefix and entity", domain.NumberFormat{Prefix: "SI", Separator: "/", Padding: 3, IncludeEntity: true}, 7, "SI/ACME/007"},
		{"value wider than padding", domain.NumberFormat{Separator: "-", Padding: 2}, 12345, "INV-12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Format(scope, tt.value))
		})
	}
}

func TestFiscalYearOf(t *testing.T) {
	april := domain.FiscalCalendar{StartMonth: time.April}
	tests := []struct {
		date time.Time
		cal  domain.FiscalCalendar
		want int
	}{
		{time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), april, 2025},
		{time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), april, 2026},
		{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), april, 2026},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), domain.FiscalCalendar{StartMonth: time.January}, 2026},
		{time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), domain.FiscalCalendar{}, 2026},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cal.FiscalYearOf(tt.date), tt.date.Format(time.DateOnly))
	}
}

func TestContentFingerprint(t *testing.T) {
	v := &domain.Voucher{
		DocumentType: "INV",
		Entity:       "ACME",
		VoucherDate:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []domain.VoucherLine{
			{AccountID: "1100", Debit: decimal.NewFromInt(5)},
			{AccountID: "4000", Credit: decimal.NewFromInt(5)},
		},
	}
	base := v.ContentFingerprint()
	require.Len(t, base, 64)

	same := v.Clone()
	same.Description = "only the description changed"
	same.Version = 9
	assert.Equal(t, base, same.ContentFingerprint())

	moved := v.Clone()
	moved.Lines[0].AccountID = "1200"
	assert.NotEqual(t, base, moved.ContentFingerprint())

	swapped := v.Clone()
	for i := range swapped.Lines {
		swapped.Lines[i] = swapped.Lines[i].Swapped()
	}
	assert.NotEqual(t, base, swapped.ContentFingerprint())
}

func TestAuditEntryHash(t *testing.T) {
	e := domain.AuditEntry{
		StreamID:   "voucher:v1",
		Seq:        1,
		Action:     domain.AuditVoucherCreated,
		Actor:      "alice",
		OccurredAt: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		Payload:    []byte(`{"lines":2}`),
	}
	h := e.ComputeHash()
	assert.Equal(t, h, e.ComputeHash(), "deterministic")

	// field boundaries are length-prefixed, so shifting text between fields changes the hash
	shifted := e
	shifted.Actor, shifted.Origin = "alic", "e"
	assert.NotEqual(t, h, shifted.ComputeHash())

	linked := e
	linked.PrevHash = h
	assert.NotEqual(t, h, linked.ComputeHash())
}

func TestVoucherRecalculate(t *testing.T) {
	v := &domain.Voucher{Lines: []domain.VoucherLine{
		{AccountID: "1100", Debit: decimal.RequireFromString("10.10")},
		{AccountID: "1200", Debit: decimal.RequireFromString("0.20")},
		{AccountID: "4000", Credit: decimal.RequireFromString("10.30")},
	}}
	v.Recalculate()
	assert.True(t, v.TotalDebit.Equal(decimal.RequireFromString("10.30")))
	assert.True(t, v.TotalCredit.Equal(v.TotalDebit))
	assert.Equal(t, 3, v.Lines[2].LineNo)
	assert.True(t, v.Amount().Equal(v.TotalDebit))
}
