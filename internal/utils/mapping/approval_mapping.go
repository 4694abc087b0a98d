package mapping

import (
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelApprovalWorkflow converts a domain workflow to its header row and level rows
func ToModelApprovalWorkflow(d domain.ApprovalWorkflow) (models.ApprovalWorkflow, []models.ApprovalLevel) {
	w := models.ApprovalWorkflow{
		WorkflowID:        d.WorkflowID,
		Name:              d.Name,
		DocumentType:      d.DocumentType,
		BoundaryInclusion: string(d.BoundaryInclusion),
		Priority:          d.Priority,
		IsActive:          d.IsActive,
	}
	if w.BoundaryInclusion == "" {
		w.BoundaryInclusion = string(domain.BoundaryLower)
	}
	levels := make([]models.ApprovalLevel, len(d.Levels))
	for i, l := range d.Levels {
		levels[i] = models.ApprovalLevel{
			WorkflowID:     d.WorkflowID,
			Level:          l.Level,
			MinAmount:      l.MinAmount,
			ApproverRole:   l.ApproverRole,
			ApproverUserID: l.ApproverUserID,
		}
		if l.MaxAmount != nil {
			levels[i].MaxAmount = decimal.NewNullDecimal(*l.MaxAmount)
		}
	}
	return w, levels
}

// ToDomainApprovalWorkflow converts a workflow row and its level rows to a domain workflow
func ToDomainApprovalWorkflow(m models.ApprovalWorkflow, levels []models.ApprovalLevel) domain.ApprovalWorkflow {
	d := domain.ApprovalWorkflow{
		WorkflowID:        m.WorkflowID,
		Name:              m.Name,
		DocumentType:      m.DocumentType,
		BoundaryInclusion: domain.BoundaryInclusion(m.BoundaryInclusion),
		Priority:          m.Priority,
		IsActive:          m.IsActive,
		Levels:            make([]domain.ApprovalLevel, len(levels)),
	}
	for i, l := range levels {
		d.Levels[i] = domain.ApprovalLevel{
			Level:          l.Level,
			MinAmount:      l.MinAmount,
			ApproverRole:   l.ApproverRole,
			ApproverUserID: l.ApproverUserID,
		}
		if l.MaxAmount.Valid {
			maxAmount := l.MaxAmount.Decimal
			d.Levels[i].MaxAmount = &maxAmount
		}
	}
	return d
}

// ToModelApprovalRequest converts a domain request to a row. The current approver
// columns mirror the awaited step so pending lookups can use an index.
func ToModelApprovalRequest(d domain.ApprovalRequest) models.ApprovalRequest {
	m := models.ApprovalRequest{
		RequestID:    d.RequestID,
		VoucherID:    d.VoucherID,
		WorkflowID:   d.WorkflowID,
		DocumentType: d.DocumentType,
		Amount:       d.Amount,
		Steps:        make([]models.ApprovalStep, len(d.Steps)),
		CurrentLevel: d.CurrentLevel,
		Status:       string(d.Status),
		DelegatedTo:  d.DelegatedTo,
		Creator:      d.Creator,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		FinalizedAt:  d.FinalizedAt,
	}
	for i, s := range d.Steps {
		m.Steps[i] = models.ApprovalStep{Level: s.Level, ApproverRole: s.ApproverRole, ApproverUserID: s.ApproverUserID}
	}
	if step, ok := d.CurrentStep(); ok && d.IsOpen() {
		m.CurrentApproverUser = step.ApproverUserID
		m.CurrentApproverRole = step.ApproverRole
	}
	return m
}

// ToDomainApprovalRequest converts a row to a domain request
func ToDomainApprovalRequest(m models.ApprovalRequest) domain.ApprovalRequest {
	d := domain.ApprovalRequest{
		RequestID:    m.RequestID,
		VoucherID:    m.VoucherID,
		WorkflowID:   m.WorkflowID,
		DocumentType: m.DocumentType,
		Amount:       m.Amount,
		Steps:        make([]domain.ApprovalStep, len(m.Steps)),
		CurrentLevel: m.CurrentLevel,
		Status:       domain.ApprovalRequestStatus(m.Status),
		DelegatedTo:  m.DelegatedTo,
		Creator:      m.Creator,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		FinalizedAt:  m.FinalizedAt,
	}
	for i, s := range m.Steps {
		d.Steps[i] = domain.ApprovalStep{Level: s.Level, ApproverRole: s.ApproverRole, ApproverUserID: s.ApproverUserID}
	}
	return d
}

// ToDomainApprovalRequestSlice converts a slice of request rows
func ToDomainApprovalRequestSlice(ms []models.ApprovalRequest) []domain.ApprovalRequest {
	ds := make([]domain.ApprovalRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainApprovalRequest(m)
	}
	return ds
}

// ToModelApprovalAction converts a domain action to a row
func ToModelApprovalAction(d domain.ApprovalAction) models.ApprovalAction {
	return models.ApprovalAction{
		ActionID:    d.ActionID,
		RequestID:   d.RequestID,
		Level:       d.Level,
		Actor:       d.Actor,
		Action:      string(d.Action),
		DelegatedTo: d.DelegatedTo,
		OccurredAt:  d.OccurredAt,
		Origin:      d.Origin,
		Comment:     d.Comment,
	}
}

// ToDomainApprovalAction converts a row to a domain action
func ToDomainApprovalAction(m models.ApprovalAction) domain.ApprovalAction {
	return domain.ApprovalAction{
		ActionID:    m.ActionID,
		RequestID:   m.RequestID,
		Level:       m.Level,
		Actor:       m.Actor,
		Action:      domain.ApprovalActionType(m.Action),
		DelegatedTo: m.DelegatedTo,
		OccurredAt:  m.OccurredAt,
		Origin:      m.Origin,
		Comment:     m.Comment,
	}
}
