package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalWorkflow is a row of approval_workflows.
type ApprovalWorkflow struct {
	WorkflowID        string `db:"workflow_id"`
	Name              string `db:"name"`
	DocumentType      string `db:"document_type"`
	BoundaryInclusion string `db:"boundary_inclusion"`
	Priority          int    `db:"priority"`
	IsActive          bool   `db:"is_active"`
}

// ApprovalLevel is a row of approval_levels.
type ApprovalLevel struct {
	WorkflowID     string              `db:"workflow_id"`
	Level          int                 `db:"level"`
	MinAmount      decimal.Decimal     `db:"min_amount"`
	MaxAmount      decimal.NullDecimal `db:"max_amount"`
	ApproverRole   string              `db:"approver_role"`
	ApproverUserID string              `db:"approver_user_id"`
}

// ApprovalStep is the JSONB element of approval_requests.steps.
type ApprovalStep struct {
	Level          int    `json:"level"`
	ApproverRole   string `json:"approver_role,omitempty"`
	ApproverUserID string `json:"approver_user_id,omitempty"`
}

// ApprovalRequest is a row of approval_requests.
type ApprovalRequest struct {
	RequestID           string          `db:"request_id"`
	VoucherID           string          `db:"voucher_id"`
	WorkflowID          string          `db:"workflow_id"`
	DocumentType        string          `db:"document_type"`
	Amount              decimal.Decimal `db:"amount"`
	Steps               []ApprovalStep  `db:"steps"`
	CurrentLevel        int             `db:"current_level"`
	Status              string          `db:"status"`
	DelegatedTo         *string         `db:"delegated_to"`
	CurrentApproverUser string          `db:"current_approver_user"`
	CurrentApproverRole string          `db:"current_approver_role"`
	Creator             string          `db:"creator"`
	Version             int             `db:"version"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
	FinalizedAt         *time.Time      `db:"finalized_at"`
}

// ApprovalAction is a row of the append-only approval_actions table.
type ApprovalAction struct {
	ActionID    string    `db:"action_id"`
	RequestID   string    `db:"request_id"`
	Level       int       `db:"level"`
	Actor       string    `db:"actor"`
	Action      string    `db:"action"`
	DelegatedTo *string   `db:"delegated_to"`
	OccurredAt  time.Time `db:"occurred_at"`
	Origin      string    `db:"origin"`
	Comment     string    `db:"comment"`
}
