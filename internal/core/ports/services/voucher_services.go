package services

import (
	"context"
	"iter"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/dto"
)

// VoucherReaderSvc defines read operations for voucher data
type VoucherReaderSvc interface {
	// GetVoucher retrieves a voucher with its lines.
	GetVoucher(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// PreviewNextNumber returns the identifier the next post in the scope would receive.
	// The value is not reserved.
	PreviewNextNumber(ctx context.Context, scope domain.ScopeKey) (domain.Identifier, error)
}

// VoucherWriterSvc defines the lifecycle transitions of a voucher
type VoucherWriterSvc interface {
	// CreateVoucher persists a new draft. No number is assigned.
	CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, actor domain.Actor) (*domain.Voucher, error)

	// UpdateDraft replaces the lines and header of a draft voucher.
	UpdateDraft(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, actor domain.Actor) (*domain.Voucher, error)

	// SubmitForApproval validates the voucher and opens an approval request when a workflow applies.
	SubmitForApproval(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error)

	// Post numbers the voucher and makes it permanent.
	Post(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error)

	// Reverse creates, submits and posts an offsetting voucher.
	Reverse(ctx context.Context, voucherID string, req dto.ReverseVoucherRequest, actor domain.Actor) (*domain.Voucher, error)

	// Cancel abandons a draft or rejected voucher.
	Cancel(ctx context.Context, voucherID string, actor domain.Actor, reason string) (*domain.Voucher, error)

	// Reopen moves a rejected voucher back to draft so it can be corrected and resubmitted.
	Reopen(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error)
}

// VoucherApprovalSvc exposes approval decisions together with their effect on the voucher
type VoucherApprovalSvc interface {
	Approve(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error)
	Reject(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error)
	Delegate(ctx context.Context, requestID string, from domain.Actor, to string, comment string) (*domain.ApprovalRequest, error)

	// PendingApprovalsFor lazily yields the open requests awaiting the actor, oldest first.
	PendingApprovalsFor(ctx context.Context, actor domain.Actor) iter.Seq2[domain.ApprovalRequest, error]

	// ListPendingApprovals returns one page of PendingApprovalsFor for paginated clients.
	ListPendingApprovals(ctx context.Context, actor domain.Actor, params dto.ListPendingParams) (*dto.ListPendingResponse, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces
// This is a facade for clients that need access to all operations
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
	VoucherApprovalSvc
}
