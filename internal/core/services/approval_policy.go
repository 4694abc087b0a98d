package services

import (
	"fmt"
	"strings"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

type approvalOp int

const (
	opApprove approvalOp = iota
	opReject
	opDelegate
)

// approvalPolicy holds every segregation-of-duties rule. All mutating engine
// operations call check before touching a request.
type approvalPolicy struct{}

// check decides whether actor may perform op on req. delegateTo is only read for opDelegate.
func (approvalPolicy) check(op approvalOp, req *domain.ApprovalRequest, actor domain.Actor, delegateTo string) error {
	if actor.IsZero() {
		return apperrors.ErrUnauthenticated
	}
	if !req.IsOpen() {
		return fmt.Errorf("%w: request %s is %s", apperrors.ErrAlreadyFinalized, req.RequestID, req.Status)
	}

	// The creator never decides on their own document, whatever roles they hold.
	if actor.UserID == req.Creator {
		if op == opDelegate {
			return apperrors.ErrSelfDelegationForbidden
		}
		return apperrors.ErrSelfApprovalForbidden
	}

	step, ok := req.CurrentStep()
	if !ok {
		return fmt.Errorf("%w: request %s has no step %d", apperrors.ErrInternal, req.RequestID, req.CurrentLevel)
	}
	if !canAct(step, req.DelegatedTo, actor) {
		return fmt.Errorf("%w: level %d", apperrors.ErrNotAuthorized, step.Level)
	}

	if op == opDelegate {
		to := strings.TrimSpace(delegateTo)
		switch {
		case to == "":
			return fmt.Errorf("%w: delegate target is required", apperrors.ErrValidation)
		case to == actor.UserID, to == req.Creator:
			return apperrors.ErrSelfDelegationForbidden
		}
	}
	return nil
}

// canAct reports whether actor holds the current level. A delegation replaces
// the configured approver for that level.
func canAct(step domain.ApprovalStep, delegatedTo *string, actor domain.Actor) bool {
	if delegatedTo != nil {
		return *delegatedTo == actor.UserID
	}
	if step.ApproverUserID != "" && step.ApproverUserID == actor.UserID {
		return true
	}
	return step.ApproverRole != "" && step.ApproverRole == actor.Role
}
