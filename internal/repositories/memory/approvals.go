package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
)

func (s *Store) SaveWorkflow(ctx context.Context, w domain.ApprovalWorkflow) error {
	return s.view(ctx, func(d *state) error {
		w.Levels = append([]domain.ApprovalLevel(nil), w.Levels...)
		d.workflows[w.WorkflowID] = w
		return nil
	})
}

func (s *Store) ListActiveWorkflows(ctx context.Context, documentType string) ([]domain.ApprovalWorkflow, error) {
	var out []domain.ApprovalWorkflow
	err := s.view(ctx, func(d *state) error {
		for _, w := range d.workflows {
			if w.IsActive && w.DocumentType == documentType {
				w.Levels = append([]domain.ApprovalLevel(nil), w.Levels...)
				out = append(out, w)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].WorkflowID < out[j].WorkflowID
	})
	return out, err
}

func (s *Store) CreateRequest(ctx context.Context, r domain.ApprovalRequest) error {
	return s.view(ctx, func(d *state) error {
		for _, existing := range d.requests {
			if existing.VoucherID == r.VoucherID && existing.IsOpen() {
				return fmt.Errorf("%w: request %s", apperrors.ErrDuplicateRequest, existing.RequestID)
			}
		}
		d.requests[r.RequestID] = *r.Clone()
		return nil
	})
}

func (s *Store) FindRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	var out *domain.ApprovalRequest
	err := s.view(ctx, func(d *state) error {
		r, ok := d.requests[requestID]
		if !ok {
			return fmt.Errorf("%w: approval request %s", apperrors.ErrNotFound, requestID)
		}
		out = r.Clone()
		return nil
	})
	return out, err
}

// FindRequestByIDForUpdate is FindRequestByID; the transaction already holds the store lock.
func (s *Store) FindRequestByIDForUpdate(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	return s.FindRequestByID(ctx, requestID)
}

func (s *Store) FindOpenRequestByVoucher(ctx context.Context, voucherID string) (*domain.ApprovalRequest, error) {
	var out *domain.ApprovalRequest
	err := s.view(ctx, func(d *state) error {
		for _, r := range d.requests {
			if r.VoucherID == voucherID && r.IsOpen() {
				out = r.Clone()
				return nil
			}
		}
		return fmt.Errorf("%w: no open request for voucher %s", apperrors.ErrNotFound, voucherID)
	})
	return out, err
}

func (s *Store) UpdateRequest(ctx context.Context, r domain.ApprovalRequest, expectedVersion int) error {
	return s.view(ctx, func(d *state) error {
		current, ok := d.requests[r.RequestID]
		if !ok {
			return fmt.Errorf("%w: approval request %s", apperrors.ErrNotFound, r.RequestID)
		}
		if current.Version != expectedVersion {
			return fmt.Errorf("%w: request %s is at version %d, expected %d", apperrors.ErrApprovalConflict, r.RequestID, current.Version, expectedVersion)
		}
		d.requests[r.RequestID] = *r.Clone()
		return nil
	})
}

func (s *Store) AppendAction(ctx context.Context, a domain.ApprovalAction) error {
	return s.view(ctx, func(d *state) error {
		if _, ok := d.requests[a.RequestID]; !ok {
			return fmt.Errorf("%w: approval request %s", apperrors.ErrNotFound, a.RequestID)
		}
		d.actions[a.RequestID] = append(d.actions[a.RequestID], a)
		return nil
	})
}

func (s *Store) ListActions(ctx context.Context, requestID string) ([]domain.ApprovalAction, error) {
	var out []domain.ApprovalAction
	err := s.view(ctx, func(d *state) error {
		out = append([]domain.ApprovalAction(nil), d.actions[requestID]...)
		return nil
	})
	return out, err
}

func (s *Store) ListPendingFor(ctx context.Context, actor domain.Actor, after *portsrepo.PendingCursor, limit int) ([]domain.ApprovalRequest, error) {
	var out []domain.ApprovalRequest
	err := s.view(ctx, func(d *state) error {
		for _, r := range d.requests {
			if awaits(r, actor) && isAfter(r, after) {
				out = append(out, *r.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].RequestID < out[j].RequestID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// awaits mirrors the pending filter of the PostgreSQL driver.
func awaits(r domain.ApprovalRequest, actor domain.Actor) bool {
	if !r.IsOpen() || r.Creator == actor.UserID {
		return false
	}
	if r.DelegatedTo != nil {
		return *r.DelegatedTo == actor.UserID
	}
	step, ok := r.CurrentStep()
	if !ok {
		return false
	}
	return (step.ApproverUserID != "" && step.ApproverUserID == actor.UserID) ||
		(step.ApproverRole != "" && step.ApproverRole == actor.Role)
}

func isAfter(r domain.ApprovalRequest, c *portsrepo.PendingCursor) bool {
	if c == nil {
		return true
	}
	if r.CreatedAt.Equal(c.CreatedAt) {
		return r.RequestID > c.RequestID
	}
	return r.CreatedAt.After(c.CreatedAt)
}
