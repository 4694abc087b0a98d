package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/SscSPs/voucher_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const voucherColumns = `
	voucher_id, document_type, voucher_date, entity, fiscal_year, number, status, description,
	total_debit, total_credit, approval_status, approved_fingerprint, reversal_of, posted_at, version,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxVoucherRepository stores vouchers and their lines.
type PgxVoucherRepository struct {
	BaseRepository
}

func newPgxVoucherRepository(pool *pgxpool.Pool) *PgxVoucherRepository {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

// SaveVoucher inserts the header and all lines in one transaction.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	return r.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO vouchers (` + voucherColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
		`
		_, err := r.db(ctx).Exec(ctx, query,
			m.VoucherID, m.DocumentType, m.VoucherDate, m.Entity, m.FiscalYear, m.Number, m.Status, m.Description,
			m.TotalDebit, m.TotalCredit, m.ApprovalStatus, m.ApprovedFingerprint, m.ReversalOf, m.PostedAt, m.Version,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if constraintViolated(err, pgUniqueViolation, "") {
			return fmt.Errorf("%w: voucher %s already exists", apperrors.ErrConflict, voucher.VoucherID)
		}
		if err != nil {
			return fmt.Errorf("failed to insert voucher %s: %w", voucher.VoucherID, err)
		}
		return r.insertLines(ctx, mapping.ToModelVoucherLineSlice(voucher))
	})
}

// UpdateVoucher replaces the header and lines when the stored version matches.
func (r *PgxVoucherRepository) UpdateVoucher(ctx context.Context, voucher domain.Voucher, expectedVersion int) error {
	m := mapping.ToModelVoucher(voucher)
	return r.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE vouchers SET
				document_type = $3, voucher_date = $4, entity = $5, fiscal_year = $6, number = $7,
				status = $8, description = $9, total_debit = $10, total_credit = $11,
				approval_status = $12, approved_fingerprint = $13, reversal_of = $14, posted_at = $15,
				version = $16, last_updated_at = $17, last_updated_by = $18
			WHERE voucher_id = $1 AND version = $2;
		`
		tag, err := r.db(ctx).Exec(ctx, query,
			m.VoucherID, expectedVersion,
			m.DocumentType, m.VoucherDate, m.Entity, m.FiscalYear, m.Number,
			m.Status, m.Description, m.TotalDebit, m.TotalCredit,
			m.ApprovalStatus, m.ApprovedFingerprint, m.ReversalOf, m.PostedAt,
			m.Version, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return updateError(err, voucher)
		}
		if tag.RowsAffected() == 0 {
			if _, err := r.FindVoucherByID(ctx, voucher.VoucherID); err != nil {
				return err
			}
			return fmt.Errorf("%w: voucher %s is not at version %d", apperrors.ErrConflict, voucher.VoucherID, expectedVersion)
		}

		if _, err := r.db(ctx).Exec(ctx, `DELETE FROM voucher_lines WHERE voucher_id = $1;`, voucher.VoucherID); err != nil {
			return fmt.Errorf("failed to replace lines of voucher %s: %w", voucher.VoucherID, err)
		}
		return r.insertLines(ctx, mapping.ToModelVoucherLineSlice(voucher))
	})
}

// updateError translates a failed header update. A taken number means the
// sequence and the issued numbers disagree.
func updateError(err error, voucher domain.Voucher) error {
	if constraintViolated(err, pgUniqueViolation, "uq_vouchers_number") {
		return fmt.Errorf("%w: number %v of voucher %s", apperrors.ErrNumberingConflict, voucher.Number, voucher.VoucherID)
	}
	return fmt.Errorf("failed to update voucher %s: %w", voucher.VoucherID, err)
}

func (r *PgxVoucherRepository) insertLines(ctx context.Context, lines []models.VoucherLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO voucher_lines (voucher_id, line_no, account_id, amount, line_type, memo)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.VoucherID, l.LineNo, l.AccountID, l.Amount, l.LineType, l.Memo)
	}
	br := r.db(ctx).SendBatch(ctx, batch)
	for _, l := range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert line %d of voucher %s: %w", l.LineNo, l.VoucherID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close line batch: %w", err)
	}
	return nil
}

func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return r.findVoucher(ctx, voucherID, "")
}

// FindVoucherByIDForUpdate locks the voucher row until the surrounding transaction ends.
func (r *PgxVoucherRepository) FindVoucherByIDForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return r.findVoucher(ctx, voucherID, " FOR UPDATE")
}

func (r *PgxVoucherRepository) FindActiveReversalOf(ctx context.Context, originalVoucherID string) (*domain.Voucher, error) {
	query := `
		SELECT voucher_id FROM vouchers
		WHERE reversal_of = $1 AND status NOT IN ('CANCELLED', 'REJECTED')
		ORDER BY created_at
		LIMIT 1;
	`
	var id string
	err := r.db(ctx).QueryRow(ctx, query, originalVoucherID).Scan(&id)
	if noSuchRow(err) {
		return nil, fmt.Errorf("%w: no reversal of %s", apperrors.ErrNotFound, originalVoucherID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up reversal of %s: %w", originalVoucherID, err)
	}
	return r.FindVoucherByID(ctx, id)
}

func (r *PgxVoucherRepository) findVoucher(ctx context.Context, voucherID, lock string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE voucher_id = $1` + lock + `;`

	var m models.Voucher
	err := r.db(ctx).QueryRow(ctx, query, voucherID).Scan(
		&m.VoucherID, &m.DocumentType, &m.VoucherDate, &m.Entity, &m.FiscalYear, &m.Number, &m.Status, &m.Description,
		&m.TotalDebit, &m.TotalCredit, &m.ApprovalStatus, &m.ApprovedFingerprint, &m.ReversalOf, &m.PostedAt, &m.Version,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if noSuchRow(err) {
		return nil, fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}

	lines, err := r.findLines(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	v := mapping.ToDomainVoucher(m, lines)
	return &v, nil
}

func (r *PgxVoucherRepository) findLines(ctx context.Context, voucherID string) ([]models.VoucherLine, error) {
	query := `
		SELECT voucher_id, line_no, account_id, amount, line_type, memo
		FROM voucher_lines
		WHERE voucher_id = $1
		ORDER BY line_no;
	`
	rows, err := r.db(ctx).Query(ctx, query, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of voucher %s: %w", voucherID, err)
	}
	defer rows.Close()

	var lines []models.VoucherLine
	for rows.Next() {
		var l models.VoucherLine
		if err := rows.Scan(&l.VoucherID, &l.LineNo, &l.AccountID, &l.Amount, &l.LineType, &l.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan voucher line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voucher lines: %w", err)
	}
	return lines, nil
}
