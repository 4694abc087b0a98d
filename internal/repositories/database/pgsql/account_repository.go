package pgsql

import (
	"context"
	"errors"
	"fmt"

	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAccountDirectory reads the accounts table.
type PgxAccountDirectory struct {
	BaseRepository
}

func newPgxAccountDirectory(pool *pgxpool.Pool) *PgxAccountDirectory {
	return &PgxAccountDirectory{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountDirectory = (*PgxAccountDirectory)(nil)

// lookup returns whether an active account exists and whether it is a group account.
func (r *PgxAccountDirectory) lookup(ctx context.Context, accountID string) (found, group bool, err error) {
	query := `SELECT is_group FROM accounts WHERE account_id = $1 AND is_active;`
	err = r.db(ctx).QueryRow(ctx, query, accountID).Scan(&group)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to look up account %s: %w", accountID, err)
	}
	return true, group, nil
}

func (r *PgxAccountDirectory) Exists(ctx context.Context, accountID string) (bool, error) {
	found, _, err := r.lookup(ctx, accountID)
	return found, err
}

func (r *PgxAccountDirectory) IsLeafAccount(ctx context.Context, accountID string) (bool, error) {
	found, group, err := r.lookup(ctx, accountID)
	return found && !group, err
}

// SaveAccount inserts or updates an account. It is used to seed the chart of accounts.
func (r *PgxAccountDirectory) SaveAccount(ctx context.Context, accountID, name string, isGroup bool) error {
	query := `
		INSERT INTO accounts (account_id, name, is_group)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET name = EXCLUDED.name, is_group = EXCLUDED.is_group, is_active = TRUE;
	`
	if _, err := r.db(ctx).Exec(ctx, query, accountID, name, isGroup); err != nil {
		return fmt.Errorf("failed to save account %s: %w", accountID, err)
	}
	return nil
}
