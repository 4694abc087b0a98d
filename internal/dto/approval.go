package dto

import (
	"time"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApproveRequest carries an optional approval comment.
type ApproveRequest struct {
	Comment string `json:"comment"`
}

// RejectRequest carries the rejection reason. An empty one is refused by the approval engine.
type RejectRequest struct {
	Comment string `json:"comment"`
}

// DelegateRequest names the user who takes over the current level.
type DelegateRequest struct {
	To      string `json:"to" binding:"required"`
	Comment string `json:"comment"`
}

// ListPendingParams defines the query parameters of the pending approvals list.
type ListPendingParams struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken string `form:"nextToken"`
}

// ApprovalStepResponse defines the data returned for one approval step.
type ApprovalStepResponse struct {
	Level          int    `json:"level"`
	ApproverRole   string `json:"approverRole,omitempty"`
	ApproverUserID string `json:"approverUserID,omitempty"`
}

// ApprovalRequestResponse defines the data returned for an approval request.
type ApprovalRequestResponse struct {
	RequestID    string                 `json:"requestID"`
	VoucherID    string                 `json:"voucherID"`
	WorkflowID   string                 `json:"workflowID"`
	DocumentType string                 `json:"documentType"`
	Amount       decimal.Decimal        `json:"amount"`
	Steps        []ApprovalStepResponse `json:"steps"`
	CurrentLevel int                    `json:"currentLevel"`
	Status       string                 `json:"status"`
	DelegatedTo  *string                `json:"delegatedTo,omitempty"`
	Creator      string                 `json:"creator"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	FinalizedAt  *time.Time             `json:"finalizedAt,omitempty"`
}

// ListPendingResponse is one page of pending approval requests.
type ListPendingResponse struct {
	Requests  []ApprovalRequestResponse `json:"requests"`
	NextToken string                    `json:"nextToken,omitempty"`
}

// ApprovalActionResponse defines the data returned for one logged decision.
type ApprovalActionResponse struct {
	ActionID    string    `json:"actionID"`
	Level       int       `json:"level"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	DelegatedTo *string   `json:"delegatedTo,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
	Origin      string    `json:"origin,omitempty"`
	Comment     string    `json:"comment,omitempty"`
}

// ToApprovalRequestResponse converts a domain.ApprovalRequest to its DTO.
func ToApprovalRequestResponse(r *domain.ApprovalRequest) ApprovalRequestResponse {
	steps := make([]ApprovalStepResponse, len(r.Steps))
	for i, s := range r.Steps {
		steps[i] = ApprovalStepResponse{Level: s.Level, ApproverRole: s.ApproverRole, ApproverUserID: s.ApproverUserID}
	}
	return ApprovalRequestResponse{
		RequestID:    r.RequestID,
		VoucherID:    r.VoucherID,
		WorkflowID:   r.WorkflowID,
		DocumentType: r.DocumentType,
		Amount:       r.Amount,
		Steps:        steps,
		CurrentLevel: r.CurrentLevel,
		Status:       string(r.Status),
		DelegatedTo:  r.DelegatedTo,
		Creator:      r.Creator,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		FinalizedAt:  r.FinalizedAt,
	}
}

// ToApprovalRequestResponses converts a slice of requests.
func ToApprovalRequestResponses(requests []domain.ApprovalRequest) []ApprovalRequestResponse {
	responses := make([]ApprovalRequestResponse, len(requests))
	for i := range requests {
		responses[i] = ToApprovalRequestResponse(&requests[i])
	}
	return responses
}

// ToApprovalActionResponses converts a decision log.
func ToApprovalActionResponses(actions []domain.ApprovalAction) []ApprovalActionResponse {
	responses := make([]ApprovalActionResponse, len(actions))
	for i, a := range actions {
		responses[i] = ApprovalActionResponse{
			ActionID:    a.ActionID,
			Level:       a.Level,
			Actor:       a.Actor,
			Action:      string(a.Action),
			DelegatedTo: a.DelegatedTo,
			OccurredAt:  a.OccurredAt,
			Origin:      a.Origin,
			Comment:     a.Comment,
		}
	}
	return responses
}
