package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/SscSPs/voucher_engine/internal/utils/pagination"
	"github.com/google/uuid"
)

// approvalEngine keeps each request's projection in lockstep with its action log:
// both are written in the same transaction, under the request's row lock.
type approvalEngine struct {
	BaseService
	tx        portsrepo.TransactionManager
	workflows portsrepo.WorkflowReader
	requests  portsrepo.ApprovalRepositoryFacade
	audit     portssvc.AuditTrail
	policy    approvalPolicy
	pageSize  int
}

// ApprovalEngineOption configures the approval engine.
type ApprovalEngineOption func(*approvalEngine)

// WithPendingPageSize sets how many requests PendingFor fetches per round trip.
func WithPendingPageSize(n int) ApprovalEngineOption {
	return func(e *approvalEngine) {
		e.pageSize = pagination.NormalizeLimit(n)
	}
}

// NewApprovalEngine creates the approval engine.
func NewApprovalEngine(
	tx portsrepo.TransactionManager,
	workflows portsrepo.WorkflowReader,
	requests portsrepo.ApprovalRepositoryFacade,
	audit portssvc.AuditTrail,
	opts ...ApprovalEngineOption,
) portssvc.ApprovalEngine {
	e := &approvalEngine{
		tx:        tx,
		workflows: workflows,
		requests:  requests,
		audit:     audit,
		pageSize:  pagination.DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// resolve returns the first active workflow, by priority, that has a bracket for the voucher amount.
// An amount above the top bound of every matching workflow needs the full chain of the
// first such workflow; only amounts below every floor, or without a workflow, skip approval.
func (e *approvalEngine) resolve(ctx context.Context, v domain.Voucher) (*domain.ApprovalWorkflow, []domain.ApprovalLevel, error) {
	workflows, err := e.workflows.ListActiveWorkflows(ctx, v.DocumentType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load workflows for %s: %w", v.DocumentType, err)
	}
	amount := v.Amount()
	for i := range workflows {
		if levels, ok := workflows[i].ResolveLevels(amount); ok {
			return &workflows[i], levels, nil
		}
	}
	for i := range workflows {
		if workflows[i].ExceedsCeiling(amount) {
			return &workflows[i], workflows[i].FullChain(), nil
		}
	}
	return nil, nil, apperrors.ErrApprovalNotRequired
}

func (e *approvalEngine) Requires(ctx context.Context, v domain.Voucher) (bool, error) {
	_, _, err := e.resolve(ctx, v)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrApprovalNotRequired):
		return false, nil
	default:
		return false, err
	}
}

// Initiate snapshots the resolved chain into a new request at level 1.
func (e *approvalEngine) Initiate(ctx context.Context, v domain.Voucher) (*domain.ApprovalRequest, error) {
	var created *domain.ApprovalRequest
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		open, err := e.requests.FindOpenRequestByVoucher(ctx, v.VoucherID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: request %s", apperrors.ErrDuplicateRequest, open.RequestID)
		case !errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("failed to look up open request: %w", err)
		}

		workflow, levels, err := e.resolve(ctx, v)
		if err != nil {
			return err
		}

		now := utcNow()
		req := domain.ApprovalRequest{
			RequestID:    uuid.NewString(),
			VoucherID:    v.VoucherID,
			WorkflowID:   workflow.WorkflowID,
			DocumentType: v.DocumentType,
			Amount:       v.Amount(),
			Steps:        domain.StepsFromLevels(levels),
			CurrentLevel: 1,
			Status:       domain.RequestPending,
			Creator:      v.Creator(),
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := e.requests.CreateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to create approval request: %w", err)
		}

		submitter := v.LastUpdatedBy
		if submitter == "" {
			submitter = v.Creator()
		}
		if _, err := e.audit.Record(ctx, domain.VoucherStream(v.VoucherID), portssvc.AuditRecord{
			Action:      domain.AuditApprovalInitiated,
			Actor:       submitter,
			StatusAfter: requestState(&req),
			Payload: map[string]any{
				"requestID":  req.RequestID,
				"workflowID": req.WorkflowID,
				"amount":     req.Amount.String(),
				"levels":     len(req.Steps),
			},
		}); err != nil {
			return err
		}
		created = &req
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrApprovalNotRequired) {
			e.LogWarn(ctx, err, "Approval initiation failed", slog.String("voucher_id", v.VoucherID))
		}
		return nil, err
	}

	e.LogInfo(ctx, "Approval request initiated",
		slog.String("request_id", created.RequestID),
		slog.String("voucher_id", created.VoucherID),
		slog.String("workflow_id", created.WorkflowID),
		slog.Int("levels", len(created.Steps)))
	return created, nil
}

func (e *approvalEngine) Approve(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error) {
	return e.decide(ctx, requestID, actor, opApprove, "", comment)
}

func (e *approvalEngine) Reject(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.ErrCommentRequired
	}
	return e.decide(ctx, requestID, actor, opReject, "", comment)
}

func (e *approvalEngine) Delegate(ctx context.Context, requestID string, from domain.Actor, to string, comment string) (*domain.ApprovalRequest, error) {
	return e.decide(ctx, requestID, from, opDelegate, strings.TrimSpace(to), comment)
}

// decide locks the request, consults the policy, appends the action and stores
// the new projection guarded by the version read under the lock.
func (e *approvalEngine) decide(ctx context.Context, requestID string, actor domain.Actor, op approvalOp, delegateTo, comment string) (*domain.ApprovalRequest, error) {
	var result *domain.ApprovalRequest
	var entryAction domain.AuditAction

	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := e.requests.FindRequestByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := e.policy.check(op, req, actor, delegateTo); err != nil {
			return err
		}

		action := domain.ApprovalAction{
			ActionID:   uuid.NewString(),
			RequestID:  req.RequestID,
			Level:      req.CurrentLevel,
			Actor:      actor.UserID,
			OccurredAt: utcNow(),
			Origin:     middleware.OriginFromCtx(ctx),
			Comment:    comment,
		}
		switch op {
		case opApprove:
			action.Action = domain.ActionApprove
		case opReject:
			action.Action = domain.ActionReject
		case opDelegate:
			action.Action = domain.ActionDelegate
			action.DelegatedTo = &delegateTo
		}

		before := requestState(req)
		updated := req.Clone()
		updated.Apply(action)
		updated.Version = req.Version + 1

		if err := e.requests.UpdateRequest(ctx, *updated, req.Version); err != nil {
			return err
		}
		if err := e.requests.AppendAction(ctx, action); err != nil {
			return fmt.Errorf("failed to append approval action: %w", err)
		}

		entryAction = auditActionFor(action.Action, updated)
		if _, err := e.audit.Record(ctx, domain.VoucherStream(updated.VoucherID), portssvc.AuditRecord{
			Action:       entryAction,
			Actor:        actor.UserID,
			Origin:       action.Origin,
			StatusBefore: before,
			StatusAfter:  requestState(updated),
			Comment:      comment,
			Payload:      actionPayload(action),
		}); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		e.LogWarn(ctx, err, "Approval decision refused",
			slog.String("request_id", requestID),
			slog.String("actor", actor.UserID),
			slog.String("code", apperrors.CodeOf(err)))
		return nil, err
	}

	e.LogInfo(ctx, "Approval decision recorded",
		slog.String("request_id", requestID),
		slog.String("actor", actor.UserID),
		slog.String("action", string(entryAction)),
		slog.String("status", string(result.Status)),
		slog.Int("level", result.CurrentLevel))
	return result, nil
}

func (e *approvalEngine) GetRequest(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	return e.requests.FindRequestByID(ctx, requestID)
}

func (e *approvalEngine) History(ctx context.Context, requestID string) ([]domain.ApprovalAction, error) {
	if _, err := e.requests.FindRequestByID(ctx, requestID); err != nil {
		return nil, err
	}
	actions, err := e.requests.ListActions(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval actions: %w", err)
	}
	return actions, nil
}

func (e *approvalEngine) PendingPage(ctx context.Context, actor domain.Actor, after *portsrepo.PendingCursor, limit int) ([]domain.ApprovalRequest, error) {
	if actor.IsZero() {
		return nil, apperrors.ErrUnauthenticated
	}
	page, err := e.requests.ListPendingFor(ctx, actor, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return page, nil
}

// PendingFor pages through the pending set with a keyset cursor. A request that
// changes while the caller iterates is seen at most once.
func (e *approvalEngine) PendingFor(ctx context.Context, actor domain.Actor) iter.Seq2[domain.ApprovalRequest, error] {
	return func(yield func(domain.ApprovalRequest, error) bool) {
		var cursor *portsrepo.PendingCursor
		for {
			page, err := e.PendingPage(ctx, actor, cursor, e.pageSize)
			if err != nil {
				yield(domain.ApprovalRequest{}, err)
				return
			}
			for _, r := range page {
				if !yield(r, nil) {
					return
				}
			}
			if len(page) < e.pageSize {
				return
			}
			last := page[len(page)-1]
			cursor = &portsrepo.PendingCursor{CreatedAt: last.CreatedAt, RequestID: last.RequestID}
		}
	}
}

// requestState renders status and level for audit entries, e.g. "PENDING@2".
func requestState(r *domain.ApprovalRequest) string {
	if r.IsOpen() {
		return fmt.Sprintf("%s@%d", r.Status, r.CurrentLevel)
	}
	return string(r.Status)
}

func auditActionFor(a domain.ApprovalActionType, updated *domain.ApprovalRequest) domain.AuditAction {
	switch a {
	case domain.ActionReject:
		return domain.AuditApprovalRejected
	case domain.ActionDelegate:
		return domain.AuditApprovalDelegated
	}
	if updated.IsOpen() {
		return domain.AuditApprovalAdvanced
	}
	return domain.AuditApprovalApproved
}

func actionPayload(a domain.ApprovalAction) map[string]any {
	p := map[string]any{
		"requestID": a.RequestID,
		"actionID":  a.ActionID,
		"level":     a.Level,
	}
	if a.DelegatedTo != nil {
		p["delegatedTo"] = *a.DelegatedTo
	}
	return p
}
