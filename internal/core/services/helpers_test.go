package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/core/services"
	"github.com/SscSPs/voucher_engine/internal/dto"
	"github.com/SscSPs/voucher_engine/internal/platform/config"
	"github.com/SscSPs/voucher_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testAccounts = "1000:group,1100,1200,2000:group,2100,4000,5000"

var (
	alice   = domain.Actor{UserID: "alice", Role: "clerk"}
	bob     = domain.Actor{UserID: "bob", Role: "approver"}
	carol   = domain.Actor{UserID: "carol", Role: "approver"}
	dave    = domain.Actor{UserID: "dave", Role: "clerk"}
	nobody  = domain.Actor{}
	testDay = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

// recordingSink collects notified events.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Notify(_ context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

type testEnv struct {
	store *memory.Store
	svc   *portssvc.ServiceContainer
	sink  *recordingSink
}

func newTestEnv(t *testing.T, workflows ...domain.ApprovalWorkflow) *testEnv {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.SeedAccounts(testAccounts))
	for _, w := range workflows {
		require.NoError(t, store.SaveWorkflow(context.Background(), w))
	}

	cfg := &config.Config{
		OperationTimeout:     5 * time.Second,
		NotifyTimeout:        time.Second,
		FiscalYearStartMonth: 1,
		MinorUnitScale:       2,
		DefaultNumberFormat:  domain.NumberFormat{Separator: "-", Padding: 6, IncludeFiscalYear: true},
	}
	sink := &recordingSink{}
	return &testEnv{
		store: store,
		svc:   services.NewServiceContainer(cfg, store.Provider(), sink),
		sink:  sink,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amount(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// balancedLines debits 1100 and credits 4000 with the same amount.
func balancedLines(value string) []dto.VoucherLineRequest {
	return []dto.VoucherLineRequest{
		{AccountID: "1100", Debit: dec(value)},
		{AccountID: "4000", Credit: dec(value)},
	}
}

func (e *testEnv) draft(t *testing.T, docType, value string, creator domain.Actor) *domain.Voucher {
	t.Helper()
	v, err := e.svc.Voucher.CreateVoucher(context.Background(), dto.CreateVoucherRequest{
		DocumentType: docType,
		Entity:       "ACME",
		VoucherDate:  testDay,
		Description:  "test voucher",
		Lines:        balancedLines(value),
	}, creator)
	require.NoError(t, err)
	return v
}

// twoLevelWorkflow: up to 1000 needs bob; up to 10000 needs bob then carol.
func twoLevelWorkflow(docType string, boundary domain.BoundaryInclusion) domain.ApprovalWorkflow {
	return domain.ApprovalWorkflow{
		WorkflowID:        "wf-" + docType,
		Name:              "two level",
		DocumentType:      docType,
		BoundaryInclusion: boundary,
		IsActive:          true,
		Levels: []domain.ApprovalLevel{
			{Level: 1, MinAmount: dec("0"), MaxAmount: amount("1000"), ApproverUserID: "bob"},
			{Level: 2, MinAmount: dec("1000.01"), MaxAmount: amount("10000"), ApproverUserID: "carol"},
		},
	}
}
