package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ApprovalEngineTestSuite struct {
	suite.Suite
	env    *testEnv
	engine portssvc.ApprovalEngine
	ctx    context.Context
}

func (s *ApprovalEngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = newTestEnv(s.T(), twoLevelWorkflow("INV", domain.BoundaryLower))
	s.engine = s.env.svc.Approval
}

func TestApprovalEngineTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalEngineTestSuite))
}

func (s *ApprovalEngineTestSuite) initiate(value string, creator domain.Actor) *domain.ApprovalRequest {
	v := s.env.draft(s.T(), "INV", value, creator)
	req, err := s.engine.Initiate(s.ctx, *v)
	s.Require().NoError(err)
	return req
}

func (s *ApprovalEngineTestSuite) TestInitiate_SnapshotsChain() {
	req := s.initiate("5000", alice)

	s.Equal(domain.RequestPending, req.Status)
	s.Equal(1, req.CurrentLevel)
	s.Equal("alice", req.Creator)
	s.Equal([]domain.ApprovalStep{
		{Level: 1, ApproverUserID: "bob"},
		{Level: 2, ApproverUserID: "carol"},
	}, req.Steps)

	// editing the workflow later does not change the in-flight request
	changed := twoLevelWorkflow("INV", domain.BoundaryLower)
	changed.Levels[1].ApproverUserID = "dave"
	s.Require().NoError(s.env.store.SaveWorkflow(s.ctx, changed))

	got, err := s.engine.GetRequest(s.ctx, req.RequestID)
	s.Require().NoError(err)
	s.Equal("carol", got.Steps[1].ApproverUserID)
}

func (s *ApprovalEngineTestSuite) TestInitiate_DuplicateAndNotRequired() {
	v := s.env.draft(s.T(), "INV", "500", alice)
	_, err := s.engine.Initiate(s.ctx, *v)
	s.Require().NoError(err)

	_, err = s.engine.Initiate(s.ctx, *v)
	s.ErrorIs(err, apperrors.ErrDuplicateRequest)

	// above the last bracket the whole chain applies
	big := s.env.draft(s.T(), "INV", "10000.01", alice)
	bigReq, err := s.engine.Initiate(s.ctx, *big)
	s.Require().NoError(err)
	s.Equal([]domain.ApprovalStep{
		{Level: 1, ApproverUserID: "bob"},
		{Level: 2, ApproverUserID: "carol"},
	}, bigReq.Steps)

	other := s.env.draft(s.T(), "JV", "500", alice)
	_, err = s.engine.Initiate(s.ctx, *other)
	s.ErrorIs(err, apperrors.ErrApprovalNotRequired)
}

func (s *ApprovalEngineTestSuite) TestSelfApprovalForbidden_EvenWithApproverRole() {
	wf := domain.ApprovalWorkflow{
		WorkflowID:   "wf-pv",
		DocumentType: "PV",
		IsActive:     true,
		Levels:       []domain.ApprovalLevel{{Level: 1, ApproverRole: "clerk"}},
	}
	s.Require().NoError(s.env.store.SaveWorkflow(s.ctx, wf))
	v := s.env.draft(s.T(), "PV", "50", alice)
	req, err := s.engine.Initiate(s.ctx, *v)
	s.Require().NoError(err)

	_, err = s.engine.Approve(s.ctx, req.RequestID, alice, "")
	s.ErrorIs(err, apperrors.ErrSelfApprovalForbidden)
	s.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))

	_, err = s.engine.Reject(s.ctx, req.RequestID, alice, "no")
	s.ErrorIs(err, apperrors.ErrSelfApprovalForbidden)

	// another clerk may approve
	done, err := s.engine.Approve(s.ctx, req.RequestID, dave, "ok")
	s.Require().NoError(err)
	s.Equal(domain.RequestApproved, done.Status)
}

func (s *ApprovalEngineTestSuite) TestApprove_AdvancesThenFinalizes() {
	req := s.initiate("5000", alice)

	_, err := s.engine.Approve(s.ctx, req.RequestID, carol, "")
	s.ErrorIs(err, apperrors.ErrNotAuthorized, "carol holds level 2, not level 1")

	advanced, err := s.engine.Approve(s.ctx, req.RequestID, bob, "")
	s.Require().NoError(err)
	s.Equal(domain.RequestPending, advanced.Status)
	s.Equal(2, advanced.CurrentLevel)
	s.Equal(req.Version+1, advanced.Version)

	done, err := s.engine.Approve(s.ctx, req.RequestID, carol, "")
	s.Require().NoError(err)
	s.Equal(domain.RequestApproved, done.Status)
	s.NotNil(done.FinalizedAt)

	_, err = s.engine.Approve(s.ctx, req.RequestID, carol, "")
	s.ErrorIs(err, apperrors.ErrAlreadyFinalized)
	_, err = s.engine.Reject(s.ctx, req.RequestID, carol, "late")
	s.ErrorIs(err, apperrors.ErrAlreadyFinalized)
}

func (s *ApprovalEngineTestSuite) TestReject_RequiresComment() {
	req := s.initiate("500", alice)

	_, err := s.engine.Reject(s.ctx, req.RequestID, bob, "   ")
	s.ErrorIs(err, apperrors.ErrCommentRequired)

	rejected, err := s.engine.Reject(s.ctx, req.RequestID, bob, "wrong cost center")
	s.Require().NoError(err)
	s.Equal(domain.RequestRejected, rejected.Status)

	history, err := s.engine.History(s.ctx, req.RequestID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(domain.ActionReject, history[0].Action)
	s.Equal("bob", history[0].Actor)
	s.Equal("wrong cost center", history[0].Comment)
	s.False(history[0].OccurredAt.IsZero())
}

func (s *ApprovalEngineTestSuite) TestDelegate() {
	req := s.initiate("500", alice)

	tests := []struct {
		name string
		from domain.Actor
		to   string
		want error
	}{
		{"creator cannot delegate", alice, "dave", apperrors.ErrSelfDelegationForbidden},
		{"to self", bob, "bob", apperrors.ErrSelfDelegationForbidden},
		{"to creator", bob, "alice", apperrors.ErrSelfDelegationForbidden},
		{"empty target", bob, " ", apperrors.ErrValidation},
		{"not the approver", carol, "dave", apperrors.ErrNotAuthorized},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.engine.Delegate(s.ctx, req.RequestID, tt.from, tt.to, "")
			s.ErrorIs(err, tt.want)
		})
	}

	delegated, err := s.engine.Delegate(s.ctx, req.RequestID, bob, "dave", "on leave")
	s.Require().NoError(err)
	s.Require().NotNil(delegated.DelegatedTo)
	s.Equal("dave", *delegated.DelegatedTo)
	s.Equal(1, delegated.CurrentLevel)

	_, err = s.engine.Approve(s.ctx, req.RequestID, bob, "")
	s.ErrorIs(err, apperrors.ErrNotAuthorized, "delegation replaces the configured approver")

	done, err := s.engine.Approve(s.ctx, req.RequestID, dave, "")
	s.Require().NoError(err)
	s.Equal(domain.RequestApproved, done.Status)
	s.Nil(done.DelegatedTo)
}

func (s *ApprovalEngineTestSuite) TestHistoryReplaysToProjection() {
	req := s.initiate("5000", alice)
	_, err := s.engine.Delegate(s.ctx, req.RequestID, bob, "dave", "")
	s.Require().NoError(err)
	_, err = s.engine.Approve(s.ctx, req.RequestID, dave, "")
	s.Require().NoError(err)
	current, err := s.engine.Approve(s.ctx, req.RequestID, carol, "")
	s.Require().NoError(err)

	history, err := s.engine.History(s.ctx, req.RequestID)
	s.Require().NoError(err)
	s.Len(history, 3)

	replayed := domain.Replay(*req, history)
	s.Equal(current.Status, replayed.Status)
	s.Equal(current.CurrentLevel, replayed.CurrentLevel)
	s.Equal(current.DelegatedTo, replayed.DelegatedTo)

	_, err = s.engine.History(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ApprovalEngineTestSuite) TestConcurrentDecisions_FirstWriterWins() {
	for round := 0; round < 20; round++ {
		req := s.initiate("500", alice)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = s.engine.Approve(s.ctx, req.RequestID, bob, "")
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = s.engine.Reject(s.ctx, req.RequestID, bob, "duplicate")
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			s.ErrorIs(err, apperrors.ErrAlreadyFinalized)
		}
		s.Equal(1, succeeded, "round %d", round)

		history, err := s.engine.History(s.ctx, req.RequestID)
		s.Require().NoError(err)
		s.Len(history, 1, "the loser never writes an action")
	}
}

func (s *ApprovalEngineTestSuite) TestDecisionsAreAudited() {
	req := s.initiate("5000", alice)
	_, err := s.engine.Approve(s.ctx, req.RequestID, bob, "")
	s.Require().NoError(err)
	_, err = s.engine.Reject(s.ctx, req.RequestID, carol, "duplicate")
	s.Require().NoError(err)

	entries, err := s.env.svc.Audit.Entries(s.ctx, domain.VoucherStream(req.VoucherID))
	s.Require().NoError(err)

	var actions []domain.AuditAction
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	s.Equal([]domain.AuditAction{
		domain.AuditVoucherCreated,
		domain.AuditApprovalInitiated,
		domain.AuditApprovalAdvanced,
		domain.AuditApprovalRejected,
	}, actions)

	last := entries[len(entries)-1]
	s.Equal("carol", last.Actor)
	s.Equal("duplicate", last.Comment)
	s.Equal("PENDING@2", last.StatusBefore)
	s.Equal("REJECTED", last.StatusAfter)
}

func TestResolveBoundary(t *testing.T) {
	tests := []struct {
		name      string
		boundary  domain.BoundaryInclusion
		amount    string
		wantSteps int // 0 = not required
	}{
		{"lower: below first bound", domain.BoundaryLower, "999.99", 1},
		{"lower: exactly first bound", domain.BoundaryLower, "1000", 1},
		{"lower: just above first bound", domain.BoundaryLower, "1000.01", 2},
		{"lower: exactly last bound", domain.BoundaryLower, "10000", 2},
		{"lower: above last bound", domain.BoundaryLower, "10000.01", 2},
		{"upper: below first bound", domain.BoundaryUpper, "999.99", 1},
		{"upper: exactly first bound", domain.BoundaryUpper, "1000", 2},
		{"upper: exactly last bound", domain.BoundaryUpper, "10000", 2},
		{"upper: above last bound", domain.BoundaryUpper, "10000.01", 2},
		{"lower: far above last bound", domain.BoundaryLower, "2500000", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, twoLevelWorkflow("INV", tt.boundary))
			ctx := context.Background()
			v := env.draft(t, "INV", tt.amount, alice)

			required, err := env.svc.Approval.Requires(ctx, *v)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSteps > 0, required)

			req, err := env.svc.Approval.Initiate(ctx, *v)
			if tt.wantSteps == 0 {
				assert.ErrorIs(t, err, apperrors.ErrApprovalNotRequired)
				return
			}
			require.NoError(t, err)
			assert.Len(t, req.Steps, tt.wantSteps)
		})
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	small := domain.ApprovalWorkflow{
		WorkflowID: "wf-small", DocumentType: "INV", Priority: 1, IsActive: true,
		Levels: []domain.ApprovalLevel{{Level: 1, MaxAmount: amount("100"), ApproverUserID: "bob"}},
	}
	catchAll := domain.ApprovalWorkflow{
		WorkflowID: "wf-all", DocumentType: "INV", Priority: 2, IsActive: true,
		Levels: []domain.ApprovalLevel{{Level: 1, ApproverUserID: "carol"}},
	}
	inactive := domain.ApprovalWorkflow{
		WorkflowID: "wf-off", DocumentType: "INV", Priority: 0, IsActive: false,
		Levels: []domain.ApprovalLevel{{Level: 1, ApproverUserID: "dave"}},
	}
	env := newTestEnv(t, catchAll, small, inactive)
	ctx := context.Background()

	req, err := env.svc.Approval.Initiate(ctx, *env.draft(t, "INV", "50", alice))
	require.NoError(t, err)
	assert.Equal(t, "wf-small", req.WorkflowID)

	req, err = env.svc.Approval.Initiate(ctx, *env.draft(t, "INV", "5000", alice))
	require.NoError(t, err)
	assert.Equal(t, "wf-all", req.WorkflowID)
}

func TestResolve_AboveCeilingPrefersCoveringWorkflow(t *testing.T) {
	low := domain.ApprovalWorkflow{
		WorkflowID: "wf-low", DocumentType: "INV", Priority: 1, IsActive: true,
		Levels: []domain.ApprovalLevel{{Level: 1, MaxAmount: amount("100"), ApproverUserID: "bob"}},
	}
	mid := domain.ApprovalWorkflow{
		WorkflowID: "wf-mid", DocumentType: "INV", Priority: 2, IsActive: true,
		Levels: []domain.ApprovalLevel{
			{Level: 1, MaxAmount: amount("500"), ApproverUserID: "carol"},
			{Level: 2, MaxAmount: amount("1000"), ApproverUserID: "dave"},
		},
	}
	env := newTestEnv(t, low, mid)
	ctx := context.Background()

	// a later workflow with a bracket wins over an earlier one that is exceeded
	req, err := env.svc.Approval.Initiate(ctx, *env.draft(t, "INV", "700", alice))
	require.NoError(t, err)
	assert.Equal(t, "wf-mid", req.WorkflowID)
	assert.Len(t, req.Steps, 2)

	// no bracket anywhere: the first exceeded workflow applies in full
	req, err = env.svc.Approval.Initiate(ctx, *env.draft(t, "INV", "5000", alice))
	require.NoError(t, err)
	assert.Equal(t, "wf-low", req.WorkflowID)
	assert.Equal(t, []domain.ApprovalStep{{Level: 1, ApproverUserID: "bob"}}, req.Steps)
}

func TestPendingFor_OldestFirstAndRestartable(t *testing.T) {
	env := newTestEnv(t, twoLevelWorkflow("INV", domain.BoundaryLower))
	ctx := context.Background()
	engine := services.NewApprovalEngine(env.store, env.store, env.store, env.svc.Audit, services.WithPendingPageSize(2))

	var created []string
	for i := 0; i < 5; i++ {
		req, err := engine.Initiate(ctx, *env.draft(t, "INV", "100", alice))
		require.NoError(t, err)
		created = append(created, req.RequestID)
	}
	// bob's own document never shows up for bob
	_, err := engine.Initiate(ctx, *env.draft(t, "INV", "100", bob))
	require.NoError(t, err)

	collect := func() []domain.ApprovalRequest {
		var out []domain.ApprovalRequest
		for r, err := range engine.PendingFor(ctx, bob) {
			require.NoError(t, err)
			out = append(out, r)
		}
		return out
	}

	first := collect()
	require.Len(t, first, 5)
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		ordered := prev.CreatedAt.Before(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.RequestID < cur.RequestID)
		assert.True(t, ordered, "position %d", i)
	}
	var ids []string
	for _, r := range first {
		ids = append(ids, r.RequestID)
	}
	assert.ElementsMatch(t, created, ids)

	assert.Equal(t, first, collect(), "a second pass starts over")

	// stopping early is fine
	seen := 0
	for range engine.PendingFor(ctx, bob) {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)

	// decided requests drop out
	_, err = engine.Approve(ctx, first[0].RequestID, bob, "")
	require.NoError(t, err)
	assert.Len(t, collect(), 4)

	for r, err := range engine.PendingFor(ctx, carol) {
		require.NoError(t, err)
		t.Fatalf("carol has nothing pending, got %s", r.RequestID)
	}
}

func TestPendingFor_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	for _, err := range env.svc.Approval.PendingFor(context.Background(), nobody) {
		assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	}
}
