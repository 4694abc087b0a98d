package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// PendingCursor marks the position after which the next page of pending requests starts.
type PendingCursor struct {
	CreatedAt time.Time
	RequestID string
}

// WorkflowReader defines read operations for approval workflow configuration
type WorkflowReader interface {
	// ListActiveWorkflows returns the active workflows of a document type ordered by priority.
	ListActiveWorkflows(ctx context.Context, documentType string) ([]domain.ApprovalWorkflow, error)
}

// WorkflowWriter defines write operations for approval workflow configuration
type WorkflowWriter interface {
	// SaveWorkflow inserts or replaces a workflow and its levels.
	SaveWorkflow(ctx context.Context, workflow domain.ApprovalWorkflow) error
}

// WorkflowRepositoryFacade combines workflow reads and writes
type WorkflowRepositoryFacade interface {
	WorkflowReader
	WorkflowWriter
}

// ApprovalRequestReader defines read operations for approval requests
type ApprovalRequestReader interface {
	// FindRequestByID retrieves an approval request.
	FindRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)

	// FindRequestByIDForUpdate retrieves an approval request and locks its row.
	FindRequestByIDForUpdate(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)

	// FindOpenRequestByVoucher returns the pending request of a voucher, or ErrNotFound.
	FindOpenRequestByVoucher(ctx context.Context, voucherID string) (*domain.ApprovalRequest, error)

	// ListPendingFor returns up to limit pending requests the actor may decide on, oldest first,
	// strictly after the cursor. Requests created by the actor are never included.
	ListPendingFor(ctx context.Context, actor domain.Actor, after *PendingCursor, limit int) ([]domain.ApprovalRequest, error)
}

// ApprovalRequestWriter defines write operations for approval requests
type ApprovalRequestWriter interface {
	// CreateRequest inserts a new request. A second open request for the same voucher
	// returns apperrors.ErrDuplicateRequest.
	CreateRequest(ctx context.Context, request domain.ApprovalRequest) error

	// UpdateRequest stores the projection if the stored version equals expectedVersion,
	// otherwise it returns apperrors.ErrApprovalConflict.
	UpdateRequest(ctx context.Context, request domain.ApprovalRequest, expectedVersion int) error
}

// ApprovalActionLog is the append-only decision log.
type ApprovalActionLog interface {
	// AppendAction inserts a write-once action.
	AppendAction(ctx context.Context, action domain.ApprovalAction) error

	// ListActions returns the actions of a request in the order they happened.
	ListActions(ctx context.Context, requestID string) ([]domain.ApprovalAction, error)
}

// ApprovalRepositoryFacade combines all approval-request interfaces
type ApprovalRepositoryFacade interface {
	ApprovalRequestReader
	ApprovalRequestWriter
	ApprovalActionLog
}
