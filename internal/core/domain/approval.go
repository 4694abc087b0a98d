package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BoundaryInclusion decides which bracket owns an amount equal to a bracket's upper bound.
type BoundaryInclusion string

const (
	// BoundaryLower gives the boundary amount to the lower bracket (the default).
	BoundaryLower BoundaryInclusion = "LOWER"
	// BoundaryUpper gives the boundary amount to the next bracket up.
	BoundaryUpper BoundaryInclusion = "UPPER"
)

// ApprovalLevel is one amount bracket of a workflow and the approver gating it.
type ApprovalLevel struct {
	Level          int              `json:"level"`
	MinAmount      decimal.Decimal  `json:"minAmount"`
	MaxAmount      *decimal.Decimal `json:"maxAmount,omitempty"` // nil = unbounded
	ApproverRole   string           `json:"approverRole,omitempty"`
	ApproverUserID string           `json:"approverUserID,omitempty"`
}

// ApprovalWorkflow routes one document type through ordered approval levels.
type ApprovalWorkflow struct {
	WorkflowID        string            `json:"workflowID"`
	Name              string            `json:"name"`
	DocumentType      string            `json:"documentType"`
	Levels            []ApprovalLevel   `json:"levels"`
	BoundaryInclusion BoundaryInclusion `json:"boundaryInclusion"`
	Priority          int               `json:"priority"` // lower is evaluated first
	IsActive          bool              `json:"isActive"`
}

// ResolveLevels returns the chain of levels a document of the given amount must pass,
// or false when the amount falls outside every bracket of the workflow.
//
// Levels are sorted by upper bound; the first bracket whose bound covers the amount
// is bracket k and the chain is levels 1..k. MinAmount of the lowest level is the floor.
func (w ApprovalWorkflow) ResolveLevels(amount decimal.Decimal) ([]ApprovalLevel, bool) {
	if len(w.Levels) == 0 {
		return nil, false
	}
	levels := w.sortedLevels()

	if amount.LessThan(levels[0].MinAmount) {
		return nil, false
	}

	for k, lvl := range levels {
		if lvl.MaxAmount == nil || w.covers(*lvl.MaxAmount, amount, k == len(levels)-1) {
			return levels[:k+1], true
		}
	}
	return nil, false
}

// ExceedsCeiling reports whether every level is bounded and amount is above the highest bound.
// Such an amount is not covered by ResolveLevels, yet still needs the whole chain.
func (w ApprovalWorkflow) ExceedsCeiling(amount decimal.Decimal) bool {
	if len(w.Levels) == 0 {
		return false
	}
	levels := w.sortedLevels()
	top := levels[len(levels)-1].MaxAmount
	return top != nil && amount.GreaterThan(*top)
}

// FullChain returns every level ordered by upper bound.
func (w ApprovalWorkflow) FullChain() []ApprovalLevel {
	return w.sortedLevels()
}

func (w ApprovalWorkflow) sortedLevels() []ApprovalLevel {
	levels := append([]ApprovalLevel(nil), w.Levels...)
	sort.SliceStable(levels, func(i, j int) bool {
		a, b := levels[i].MaxAmount, levels[j].MaxAmount
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.LessThan(*b)
		}
	})
	return levels
}

func (w ApprovalWorkflow) covers(max, amount decimal.Decimal, last bool) bool {
	if w.BoundaryInclusion == BoundaryUpper && !last {
		return amount.LessThan(max)
	}
	return amount.LessThanOrEqual(max)
}

// ApprovalRequestStatus is the state of an approval request.
type ApprovalRequestStatus string

const (
	RequestPending  ApprovalRequestStatus = "PENDING"
	RequestApproved ApprovalRequestStatus = "APPROVED"
	RequestRejected ApprovalRequestStatus = "REJECTED"
)

// ApprovalStep is the snapshot of one level taken when the request was initiated,
// so later workflow edits never change an in-flight request.
type ApprovalStep struct {
	Level          int    `json:"level"`
	ApproverRole   string `json:"approverRole,omitempty"`
	ApproverUserID string `json:"approverUserID,omitempty"`
}

// StepsFromLevels renumbers a resolved chain into request steps.
func StepsFromLevels(levels []ApprovalLevel) []ApprovalStep {
	steps := make([]ApprovalStep, len(levels))
	for i, l := range levels {
		steps[i] = ApprovalStep{Level: i + 1, ApproverRole: l.ApproverRole, ApproverUserID: l.ApproverUserID}
	}
	return steps
}

// ApprovalRequest tracks one voucher through its approval chain.
// Status, CurrentLevel and DelegatedTo are a projection of the request's actions.
type ApprovalRequest struct {
	RequestID    string                `json:"requestID"`
	VoucherID    string                `json:"voucherID"`
	WorkflowID   string                `json:"workflowID"`
	DocumentType string                `json:"documentType"`
	Amount       decimal.Decimal       `json:"amount"`
	Steps        []ApprovalStep        `json:"steps"`
	CurrentLevel int                   `json:"currentLevel"`
	Status       ApprovalRequestStatus `json:"status"`
	DelegatedTo  *string               `json:"delegatedTo,omitempty"`
	Creator      string                `json:"creator"`
	Version      int                   `json:"version"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	FinalizedAt  *time.Time            `json:"finalizedAt,omitempty"`
}

// IsOpen reports whether the request still awaits a decision.
func (r *ApprovalRequest) IsOpen() bool {
	return r.Status == RequestPending
}

// CurrentStep returns the step awaiting a decision.
func (r *ApprovalRequest) CurrentStep() (ApprovalStep, bool) {
	if r.CurrentLevel < 1 || r.CurrentLevel > len(r.Steps) {
		return ApprovalStep{}, false
	}
	return r.Steps[r.CurrentLevel-1], true
}

// Clone returns a deep copy safe to mutate.
func (r *ApprovalRequest) Clone() *ApprovalRequest {
	c := *r
	c.Steps = append([]ApprovalStep(nil), r.Steps...)
	if r.DelegatedTo != nil {
		d := *r.DelegatedTo
		c.DelegatedTo = &d
	}
	if r.FinalizedAt != nil {
		t := *r.FinalizedAt
		c.FinalizedAt = &t
	}
	return &c
}

// ApprovalActionType enumerates decisions recorded against a request.
type ApprovalActionType string

const (
	ActionApprove  ApprovalActionType = "APPROVE"
	ActionReject   ApprovalActionType = "REJECT"
	ActionDelegate ApprovalActionType = "DELEGATE"
)

// ApprovalAction is a write-once entry in the approval log.
type ApprovalAction struct {
	ActionID    string             `json:"actionID"`
	RequestID   string             `json:"requestID"`
	Level       int                `json:"level"`
	Actor       string             `json:"actor"`
	Action      ApprovalActionType `json:"action"`
	DelegatedTo *string            `json:"delegatedTo,omitempty"`
	OccurredAt  time.Time          `json:"occurredAt"`
	Origin      string             `json:"origin"`
	Comment     string             `json:"comment,omitempty"`
}

// Apply folds one action into the request projection.
func (r *ApprovalRequest) Apply(a ApprovalAction) {
	switch a.Action {
	case ActionApprove:
		r.DelegatedTo = nil
		if r.CurrentLevel >= len(r.Steps) {
			r.Status = RequestApproved
			t := a.OccurredAt
			r.FinalizedAt = &t
		} else {
			r.CurrentLevel++
		}
	case ActionReject:
		r.Status = RequestRejected
		t := a.OccurredAt
		r.FinalizedAt = &t
	case ActionDelegate:
		if a.DelegatedTo != nil {
			d := *a.DelegatedTo
			r.DelegatedTo = &d
		}
	}
	r.UpdatedAt = a.OccurredAt
}

// Replay rebuilds the projection of a freshly initiated request from its action log.
func Replay(initial ApprovalRequest, actions []ApprovalAction) ApprovalRequest {
	r := initial.Clone()
	r.Status = RequestPending
	r.CurrentLevel = 1
	r.DelegatedTo = nil
	r.FinalizedAt = nil
	for _, a := range actions {
		r.Apply(a)
	}
	return *r
}
