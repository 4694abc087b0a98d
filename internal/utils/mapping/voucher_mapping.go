package mapping

import (
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelVoucher converts a domain Voucher to a model Voucher. Lines are mapped separately.
func ToModelVoucher(d domain.Voucher) models.Voucher {
	m := models.Voucher{
		VoucherID:           d.VoucherID,
		DocumentType:        d.DocumentType,
		VoucherDate:         d.VoucherDate,
		Entity:              d.Entity,
		FiscalYear:          d.FiscalYear,
		Status:              string(d.Status),
		Description:         d.Description,
		TotalDebit:          d.TotalDebit,
		TotalCredit:         d.TotalCredit,
		ApprovalStatus:      string(d.ApprovalStatus),
		ApprovedFingerprint: d.ApprovedFingerprint,
		ReversalOf:          d.ReversalOf,
		PostedAt:            d.PostedAt,
		Version:             d.Version,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
	if d.Number != "" {
		n := d.Number
		m.Number = &n
	}
	return m
}

// ToDomainVoucher converts a model Voucher and its lines to a domain Voucher
func ToDomainVoucher(m models.Voucher, lines []models.VoucherLine) domain.Voucher {
	d := domain.Voucher{
		VoucherID:           m.VoucherID,
		DocumentType:        m.DocumentType,
		VoucherDate:         m.VoucherDate,
		Entity:              m.Entity,
		FiscalYear:          m.FiscalYear,
		Status:              domain.VoucherStatus(m.Status),
		Description:         m.Description,
		Lines:               ToDomainVoucherLineSlice(lines),
		TotalDebit:          m.TotalDebit,
		TotalCredit:         m.TotalCredit,
		ApprovalStatus:      domain.ApprovalStatus(m.ApprovalStatus),
		ApprovedFingerprint: m.ApprovedFingerprint,
		ReversalOf:          m.ReversalOf,
		PostedAt:            m.PostedAt,
		Version:             m.Version,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
	if m.Number != nil {
		d.Number = *m.Number
	}
	return d
}

// ToModelVoucherLine converts a domain line to the amount and type stored per row
func ToModelVoucherLine(voucherID string, d domain.VoucherLine) models.VoucherLine {
	m := models.VoucherLine{
		VoucherID: voucherID,
		LineNo:    d.LineNo,
		AccountID: d.AccountID,
		Amount:    d.Amount(),
		LineType:  models.Credit,
		Memo:      d.Memo,
	}
	if d.IsDebit() {
		m.LineType = models.Debit
	}
	return m
}

// ToDomainVoucherLine converts a stored line back to its debit or credit side
func ToDomainVoucherLine(m models.VoucherLine) domain.VoucherLine {
	d := domain.VoucherLine{
		LineNo:    m.LineNo,
		AccountID: m.AccountID,
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
		Memo:      m.Memo,
	}
	if m.LineType == models.Debit {
		d.Debit = m.Amount
	} else {
		d.Credit = m.Amount
	}
	return d
}

// ToModelVoucherLineSlice converts the lines of a domain Voucher
func ToModelVoucherLineSlice(d domain.Voucher) []models.VoucherLine {
	ms := make([]models.VoucherLine, len(d.Lines))
	for i, l := range d.Lines {
		ms[i] = ToModelVoucherLine(d.VoucherID, l)
	}
	return ms
}

// ToDomainVoucherLineSlice converts a slice of model lines to domain lines
func ToDomainVoucherLineSlice(ms []models.VoucherLine) []domain.VoucherLine {
	ds := make([]domain.VoucherLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainVoucherLine(m)
	}
	return ds
}
