package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineType indicates whether a voucher line is a Debit or a Credit.
type LineType string

const (
	Debit  LineType = "DEBIT"
	Credit LineType = "CREDIT"
)

// Voucher is a row of the vouchers table.
type Voucher struct {
	VoucherID           string          `db:"voucher_id"`
	DocumentType        string          `db:"document_type"`
	VoucherDate         time.Time       `db:"voucher_date"`
	Entity              string          `db:"entity"`
	FiscalYear          int             `db:"fiscal_year"`
	Number              *string         `db:"number"` // NULL until posted
	Status              string          `db:"status"`
	Description         string          `db:"description"`
	TotalDebit          decimal.Decimal `db:"total_debit"`
	TotalCredit         decimal.Decimal `db:"total_credit"`
	ApprovalStatus      string          `db:"approval_status"`
	ApprovedFingerprint string          `db:"approved_fingerprint"`
	ReversalOf          *string         `db:"reversal_of"`
	PostedAt            *time.Time      `db:"posted_at"`
	Version             int             `db:"version"`
	AuditFields
}

// VoucherLine stores one side of a posting as a positive amount and its type.
type VoucherLine struct {
	VoucherID string          `db:"voucher_id"`
	LineNo    int             `db:"line_no"`
	AccountID string          `db:"account_id"`
	Amount    decimal.Decimal `db:"amount"` // always positive
	LineType  LineType        `db:"line_type"`
	Memo      string          `db:"memo"`
}
