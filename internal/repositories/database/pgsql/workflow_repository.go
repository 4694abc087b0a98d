package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/SscSPs/voucher_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxWorkflowRepository stores approval workflow configuration.
type PgxWorkflowRepository struct {
	BaseRepository
}

func newPgxWorkflowRepository(pool *pgxpool.Pool) *PgxWorkflowRepository {
	return &PgxWorkflowRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WorkflowRepositoryFacade = (*PgxWorkflowRepository)(nil)

// SaveWorkflow upserts the workflow header and replaces its levels.
func (r *PgxWorkflowRepository) SaveWorkflow(ctx context.Context, workflow domain.ApprovalWorkflow) error {
	header, levels := mapping.ToModelApprovalWorkflow(workflow)
	return r.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO approval_workflows (workflow_id, name, document_type, boundary_inclusion, priority, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (workflow_id) DO UPDATE SET
				name = EXCLUDED.name,
				document_type = EXCLUDED.document_type,
				boundary_inclusion = EXCLUDED.boundary_inclusion,
				priority = EXCLUDED.priority,
				is_active = EXCLUDED.is_active;
		`
		_, err := r.db(ctx).Exec(ctx, query,
			header.WorkflowID, header.Name, header.DocumentType, header.BoundaryInclusion, header.Priority, header.IsActive)
		if err != nil {
			return fmt.Errorf("failed to save workflow %s: %w", header.WorkflowID, err)
		}

		if _, err := r.db(ctx).Exec(ctx, `DELETE FROM approval_levels WHERE workflow_id = $1;`, header.WorkflowID); err != nil {
			return fmt.Errorf("failed to replace levels of workflow %s: %w", header.WorkflowID, err)
		}

		batch := &pgx.Batch{}
		for _, l := range levels {
			batch.Queue(`
				INSERT INTO approval_levels (workflow_id, level, min_amount, max_amount, approver_role, approver_user_id)
				VALUES ($1, $2, $3, $4, $5, $6);
			`, l.WorkflowID, l.Level, l.MinAmount, l.MaxAmount, l.ApproverRole, l.ApproverUserID)
		}
		if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert levels of workflow %s: %w", header.WorkflowID, err)
		}
		return nil
	})
}

func (r *PgxWorkflowRepository) ListActiveWorkflows(ctx context.Context, documentType string) ([]domain.ApprovalWorkflow, error) {
	query := `
		SELECT workflow_id, name, document_type, boundary_inclusion, priority, is_active
		FROM approval_workflows
		WHERE document_type = $1 AND is_active
		ORDER BY priority, workflow_id;
	`
	rows, err := r.db(ctx).Query(ctx, query, documentType)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows for %s: %w", documentType, err)
	}
	headers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ApprovalWorkflow, error) {
		var w models.ApprovalWorkflow
		err := row.Scan(&w.WorkflowID, &w.Name, &w.DocumentType, &w.BoundaryInclusion, &w.Priority, &w.IsActive)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflows for %s: %w", documentType, err)
	}
	if len(headers) == 0 {
		return nil, nil
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.WorkflowID
	}
	levelsByWorkflow, err := r.findLevels(ctx, ids)
	if err != nil {
		return nil, err
	}

	workflows := make([]domain.ApprovalWorkflow, len(headers))
	for i, h := range headers {
		workflows[i] = mapping.ToDomainApprovalWorkflow(h, levelsByWorkflow[h.WorkflowID])
	}
	return workflows, nil
}

func (r *PgxWorkflowRepository) findLevels(ctx context.Context, workflowIDs []string) (map[string][]models.ApprovalLevel, error) {
	query := `
		SELECT workflow_id, level, min_amount, max_amount, approver_role, approver_user_id
		FROM approval_levels
		WHERE workflow_id = ANY($1)
		ORDER BY workflow_id, level;
	`
	rows, err := r.db(ctx).Query(ctx, query, workflowIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval levels: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.ApprovalLevel, len(workflowIDs))
	for rows.Next() {
		var l models.ApprovalLevel
		if err := rows.Scan(&l.WorkflowID, &l.Level, &l.MinAmount, &l.MaxAmount, &l.ApproverRole, &l.ApproverUserID); err != nil {
			return nil, fmt.Errorf("failed to scan approval level: %w", err)
		}
		out[l.WorkflowID] = append(out[l.WorkflowID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval levels: %w", err)
	}
	return out, nil
}
