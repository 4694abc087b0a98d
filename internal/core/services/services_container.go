package services

import (
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// notifier may be nil, in which case no events are sent.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.NotificationSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Leaf services first; the voucher lifecycle depends on all of them.
	container.Validator = NewLedgerValidator(repos.Accounts, cfg.MinorUnitScale)
	container.Numbering = NewNumberingService(repos.SequenceRepo, cfg.DefaultNumberFormat, cfg.NumberFormats)
	container.Audit = NewAuditTrail(repos.AuditRepo)
	container.Approval = NewApprovalEngine(repos.TxManager, repos.WorkflowRepo, repos.ApprovalRepo, container.Audit)

	options := []VoucherServiceOption{
		WithFiscalCalendar(cfg.FiscalCalendar()),
		WithMinorUnitScale(cfg.MinorUnitScale),
		WithOperationTimeout(cfg.OperationTimeout),
		WithNotifyTimeout(cfg.NotifyTimeout),
	}
	if notifier != nil {
		options = append(options, WithNotificationSink(notifier))
	}
	container.Voucher = NewVoucherService(
		repos.TxManager,
		repos.VoucherRepo,
		container.Validator,
		container.Approval,
		container.Numbering,
		container.Audit,
		options...,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.VoucherSvcFacade     = (*voucherService)(nil)
	_ portssvc.ApprovalEngine       = (*approvalEngine)(nil)
	_ portssvc.NumberingService     = (*numberingService)(nil)
	_ portssvc.AuditTrail           = (*auditTrail)(nil)
	_ portssvc.LedgerEntryValidator = (*ledgerValidator)(nil)
)
