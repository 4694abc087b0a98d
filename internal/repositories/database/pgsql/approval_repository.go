package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/SscSPs/voucher_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `
	request_id, voucher_id, workflow_id, document_type, amount, steps, current_level, status,
	delegated_to, current_approver_user, current_approver_role, creator, version,
	created_at, updated_at, finalized_at`

// PgxApprovalRepository stores approval requests and their action log.
type PgxApprovalRepository struct {
	BaseRepository
}

func newPgxApprovalRepository(pool *pgxpool.Pool) *PgxApprovalRepository {
	return &PgxApprovalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

func scanRequest(row pgx.Row) (models.ApprovalRequest, error) {
	var m models.ApprovalRequest
	err := row.Scan(
		&m.RequestID, &m.VoucherID, &m.WorkflowID, &m.DocumentType, &m.Amount, &m.Steps, &m.CurrentLevel, &m.Status,
		&m.DelegatedTo, &m.CurrentApproverUser, &m.CurrentApproverRole, &m.Creator, &m.Version,
		&m.CreatedAt, &m.UpdatedAt, &m.FinalizedAt,
	)
	return m, err
}

// CreateRequest relies on the partial unique index over open requests to refuse a second one.
func (r *PgxApprovalRepository) CreateRequest(ctx context.Context, request domain.ApprovalRequest) error {
	m := mapping.ToModelApprovalRequest(request)
	query := `
		INSERT INTO approval_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.RequestID, m.VoucherID, m.WorkflowID, m.DocumentType, m.Amount, m.Steps, m.CurrentLevel, m.Status,
		m.DelegatedTo, m.CurrentApproverUser, m.CurrentApproverRole, m.Creator, m.Version,
		m.CreatedAt, m.UpdatedAt, m.FinalizedAt,
	)
	if constraintViolated(err, pgUniqueViolation, "uq_approval_requests_open") {
		return fmt.Errorf("%w: voucher %s", apperrors.ErrDuplicateRequest, request.VoucherID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert approval request %s: %w", request.RequestID, err)
	}
	return nil
}

func (r *PgxApprovalRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	return r.findRequest(ctx, `request_id = $1`, requestID, "")
}

func (r *PgxApprovalRepository) FindRequestByIDForUpdate(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	return r.findRequest(ctx, `request_id = $1`, requestID, " FOR UPDATE")
}

func (r *PgxApprovalRepository) FindOpenRequestByVoucher(ctx context.Context, voucherID string) (*domain.ApprovalRequest, error) {
	return r.findRequest(ctx, `voucher_id = $1 AND status = 'PENDING'`, voucherID, "")
}

func (r *PgxApprovalRepository) findRequest(ctx context.Context, where, arg, lock string) (*domain.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE ` + where + lock + `;`
	m, err := scanRequest(r.db(ctx).QueryRow(ctx, query, arg))
	if noSuchRow(err) {
		return nil, fmt.Errorf("%w: approval request for %s", apperrors.ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find approval request for %s: %w", arg, err)
	}
	d := mapping.ToDomainApprovalRequest(m)
	return &d, nil
}

func (r *PgxApprovalRepository) UpdateRequest(ctx context.Context, request domain.ApprovalRequest, expectedVersion int) error {
	m := mapping.ToModelApprovalRequest(request)
	query := `
		UPDATE approval_requests SET
			current_level = $3, status = $4, delegated_to = $5,
			current_approver_user = $6, current_approver_role = $7,
			version = $8, updated_at = $9, finalized_at = $10
		WHERE request_id = $1 AND version = $2;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.RequestID, expectedVersion,
		m.CurrentLevel, m.Status, m.DelegatedTo,
		m.CurrentApproverUser, m.CurrentApproverRole,
		m.Version, m.UpdatedAt, m.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval request %s: %w", request.RequestID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindRequestByID(ctx, request.RequestID); err != nil {
			return err
		}
		return fmt.Errorf("%w: request %s is not at version %d", apperrors.ErrApprovalConflict, request.RequestID, expectedVersion)
	}
	return nil
}

func (r *PgxApprovalRepository) AppendAction(ctx context.Context, action domain.ApprovalAction) error {
	m := mapping.ToModelApprovalAction(action)
	query := `
		INSERT INTO approval_actions (action_id, request_id, level, actor, action, delegated_to, occurred_at, origin, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.ActionID, m.RequestID, m.Level, m.Actor, m.Action, m.DelegatedTo, m.OccurredAt, m.Origin, m.Comment)
	if constraintViolated(err, pgForeignKeyViolation, "") {
		return fmt.Errorf("%w: approval request %s", apperrors.ErrNotFound, action.RequestID)
	}
	if err != nil {
		return fmt.Errorf("failed to append approval action: %w", err)
	}
	return nil
}

func (r *PgxApprovalRepository) ListActions(ctx context.Context, requestID string) ([]domain.ApprovalAction, error) {
	query := `
		SELECT action_id, request_id, level, actor, action, delegated_to, occurred_at, origin, comment
		FROM approval_actions
		WHERE request_id = $1
		ORDER BY seq;
	`
	rows, err := r.db(ctx).Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions of request %s: %w", requestID, err)
	}
	actions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ApprovalAction, error) {
		var m models.ApprovalAction
		err := row.Scan(&m.ActionID, &m.RequestID, &m.Level, &m.Actor, &m.Action, &m.DelegatedTo, &m.OccurredAt, &m.Origin, &m.Comment)
		return mapping.ToDomainApprovalAction(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan actions of request %s: %w", requestID, err)
	}
	return actions, nil
}

// ListPendingFor pages through open requests awaiting the actor with a keyset on (created_at, request_id).
// A delegation replaces the step approver.
func (r *PgxApprovalRepository) ListPendingFor(ctx context.Context, actor domain.Actor, after *portsrepo.PendingCursor, limit int) ([]domain.ApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE status = 'PENDING'
			AND creator <> $1
			AND (
				(delegated_to IS NOT NULL AND delegated_to = $1)
				OR (delegated_to IS NULL AND (
					(current_approver_user <> '' AND current_approver_user = $1)
					OR (current_approver_role <> '' AND current_approver_role = $2)
				))
			)
			AND ($3::timestamptz IS NULL OR (created_at, request_id) > ($3::timestamptz, $4::uuid))
		ORDER BY created_at, request_id
		LIMIT $5;
	`
	var (
		afterAt *time.Time
		afterID *string
		lim     *int
	)
	if after != nil {
		at := after.CreatedAt
		afterAt, afterID = &at, &after.RequestID
	}
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.db(ctx).Query(ctx, query, actor.UserID, actor.Role, afterAt, afterID, lim)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending requests for %s: %w", actor.UserID, err)
	}
	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ApprovalRequest, error) {
		return scanRequest(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending requests: %w", err)
	}
	return mapping.ToDomainApprovalRequestSlice(ms), nil
}
