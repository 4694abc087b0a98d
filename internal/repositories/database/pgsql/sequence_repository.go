package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSequenceRepository keeps one counter row per numbering scope.
type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool) *PgxSequenceRepository {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// Increment creates the row at 1 or bumps it. The row stays locked until the
// surrounding transaction ends, so a rolled back post gives its value back.
func (r *PgxSequenceRepository) Increment(ctx context.Context, scope domain.ScopeKey) (int64, error) {
	query := `
		INSERT INTO number_sequences (entity, document_type, fiscal_year, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (entity, document_type, fiscal_year)
		DO UPDATE SET last_value = number_sequences.last_value + 1
		RETURNING last_value;
	`
	var value int64
	if err := r.db(ctx).QueryRow(ctx, query, scope.Entity, scope.DocumentType, scope.FiscalYear).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", scope, err)
	}
	return value, nil
}

func (r *PgxSequenceRepository) Peek(ctx context.Context, scope domain.ScopeKey) (int64, error) {
	query := `
		SELECT last_value FROM number_sequences
		WHERE entity = $1 AND document_type = $2 AND fiscal_year = $3;
	`
	var value int64
	err := r.db(ctx).QueryRow(ctx, query, scope.Entity, scope.DocumentType, scope.FiscalYear).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", scope, err)
	}
	return value, nil
}
