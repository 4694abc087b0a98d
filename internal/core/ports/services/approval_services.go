package services

import (
	"context"
	"iter"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
)

// ApprovalEngine drives approval requests through their levels.
// Every mutating operation joins the transaction carried by ctx, if any.
type ApprovalEngine interface {
	// Initiate opens a request for the voucher, or returns apperrors.ErrApprovalNotRequired
	// when no active workflow covers its document type and amount.
	Initiate(ctx context.Context, voucher domain.Voucher) (*domain.ApprovalRequest, error)

	// Requires reports whether any active workflow covers the voucher.
	Requires(ctx context.Context, voucher domain.Voucher) (bool, error)

	Approve(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error)

	// Reject finalizes the request. The comment is mandatory.
	Reject(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error)

	// Delegate hands the current level of the request to another user.
	Delegate(ctx context.Context, requestID string, from domain.Actor, to string, comment string) (*domain.ApprovalRequest, error)

	GetRequest(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)

	// History returns the decision log of a request, oldest first.
	History(ctx context.Context, requestID string) ([]domain.ApprovalAction, error)

	// PendingFor yields open requests awaiting the actor, oldest first. Iteration fetches
	// one page at a time, stops at the end of the set and may be started again.
	PendingFor(ctx context.Context, actor domain.Actor) iter.Seq2[domain.ApprovalRequest, error]

	// PendingPage returns one page of PendingFor after the cursor.
	PendingPage(ctx context.Context, actor domain.Actor, after *portsrepo.PendingCursor, limit int) ([]domain.ApprovalRequest, error)
}
