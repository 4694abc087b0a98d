package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/SscSPs/voucher_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auditColumns = `
	entry_id, stream_id, seq, action, actor, origin, occurred_at,
	status_before, status_after, comment, payload, prev_hash, hash`

// PgxAuditRepository appends to audit_entries. Updates and deletes are refused by a trigger.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func scanAuditEntry(row pgx.Row) (models.AuditEntry, error) {
	var m models.AuditEntry
	err := row.Scan(&m.EntryID, &m.StreamID, &m.Seq, &m.Action, &m.Actor, &m.Origin, &m.OccurredAt,
		&m.StatusBefore, &m.StatusAfter, &m.Comment, &m.Payload, &m.PrevHash, &m.Hash)
	return m, err
}

func (r *PgxAuditRepository) LastEntry(ctx context.Context, streamID string) (*domain.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries WHERE stream_id = $1 ORDER BY seq DESC LIMIT 1;`
	m, err := scanAuditEntry(r.db(ctx).QueryRow(ctx, query, streamID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read head of audit stream %s: %w", streamID, err)
	}
	e := mapping.ToDomainAuditEntry(m)
	return &e, nil
}

func (r *PgxAuditRepository) AppendEntry(ctx context.Context, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)
	query := `
		INSERT INTO audit_entries (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.EntryID, m.StreamID, m.Seq, m.Action, m.Actor, m.Origin, m.OccurredAt,
		m.StatusBefore, m.StatusAfter, m.Comment, m.Payload, m.PrevHash, m.Hash)
	if constraintViolated(err, pgUniqueViolation, "uq_audit_entries_stream_seq") {
		return fmt.Errorf("%w: audit stream %s already has seq %d", apperrors.ErrConflict, entry.StreamID, entry.Seq)
	}
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *PgxAuditRepository) ListEntries(ctx context.Context, streamID string) ([]domain.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries WHERE stream_id = $1 ORDER BY seq;`
	rows, err := r.db(ctx).Query(ctx, query, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit stream %s: %w", streamID, err)
	}
	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AuditEntry, error) {
		return scanAuditEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit stream %s: %w", streamID, err)
	}
	return mapping.ToDomainAuditEntrySlice(ms), nil
}
