package pgsql

import (
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    &BaseRepository{Pool: dbPool},
		Accounts:     newPgxAccountDirectory(dbPool),
		VoucherRepo:  newPgxVoucherRepository(dbPool),
		WorkflowRepo: newPgxWorkflowRepository(dbPool),
		ApprovalRepo: newPgxApprovalRepository(dbPool),
		SequenceRepo: newPgxSequenceRepository(dbPool),
		AuditRepo:    newPgxAuditRepository(dbPool),
	}
}

// NewAccountSeeder exposes account upserts for bootstrapping a chart of accounts.
func NewAccountSeeder(dbPool *pgxpool.Pool) *PgxAccountDirectory {
	return newPgxAccountDirectory(dbPool)
}
