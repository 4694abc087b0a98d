package domain

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

// VoucherStatus indicates the lifecycle state of a voucher.
type VoucherStatus string

const (
	VoucherDraft           VoucherStatus = "DRAFT"
	VoucherPendingApproval VoucherStatus = "PENDING_APPROVAL"
	VoucherPosted          VoucherStatus = "POSTED"
	VoucherRejected        VoucherStatus = "REJECTED"
	VoucherCancelled       VoucherStatus = "CANCELLED"
)

// ApprovalStatus is the voucher-side projection of its approval request.
type ApprovalStatus string

const (
	// ApprovalNotEvaluated means no submission happened since the last edit.
	ApprovalNotEvaluated ApprovalStatus = ""
	ApprovalNotRequired  ApprovalStatus = "NOT_REQUIRED"
	ApprovalPending      ApprovalStatus = "PENDING"
	ApprovalApproved     ApprovalStatus = "APPROVED"
	ApprovalRejected     ApprovalStatus = "REJECTED"
)

// VoucherLine is a single debit or credit against a leaf account.
type VoucherLine struct {
	LineNo    int             `json:"lineNo"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// IsDebit reports whether the line carries a debit amount.
func (l VoucherLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the non-zero side of the line.
func (l VoucherLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// Swapped returns the line with debit and credit exchanged.
func (l VoucherLine) Swapped() VoucherLine {
	l.Debit, l.Credit = l.Credit, l.Debit
	return l
}

// Voucher is a double-entry accounting document.
type Voucher struct {
	VoucherID           string          `json:"voucherID"`
	DocumentType        string          `json:"documentType"`
	VoucherDate         time.Time       `json:"voucherDate"`
	Entity              string          `json:"entity"`
	FiscalYear          int             `json:"fiscalYear"`
	Number              string          `json:"number,omitempty"` // empty until posted
	Status              VoucherStatus   `json:"status"`
	Description         string          `json:"description"`
	Lines               []VoucherLine   `json:"lines"`
	TotalDebit          decimal.Decimal `json:"totalDebit"`
	TotalCredit         decimal.Decimal `json:"totalCredit"`
	ApprovalStatus      ApprovalStatus  `json:"approvalStatus"`
	ApprovedFingerprint string          `json:"-"`
	ReversalOf          *string         `json:"reversalOf,omitempty"`
	PostedAt            *time.Time      `json:"postedAt,omitempty"`
	Version             int             `json:"version"`
	AuditFields
}

// Creator returns the user who created the voucher.
func (v *Voucher) Creator() string {
	return v.CreatedBy
}

// Amount is the value used for approval routing: the debit total.
func (v *Voucher) Amount() decimal.Decimal {
	return v.TotalDebit
}

// Recalculate refreshes the totals and line numbers from Lines.
func (v *Voucher) Recalculate() {
	debit, credit := decimal.Zero, decimal.Zero
	for i := range v.Lines {
		v.Lines[i].LineNo = i + 1
		debit = debit.Add(v.Lines[i].Debit)
		credit = credit.Add(v.Lines[i].Credit)
	}
	v.TotalDebit, v.TotalCredit = debit, credit
}

// IsEditable reports whether lines may still change.
func (v *Voucher) IsEditable() bool {
	return v.Status == VoucherDraft
}

// IsCancellable reports whether Cancel is allowed.
func (v *Voucher) IsCancellable() bool {
	return v.Status == VoucherDraft || v.Status == VoucherRejected
}

// ContentFingerprint hashes everything an approver signed off on:
// type, entity, date, and every line in order.
func (v *Voucher) ContentFingerprint() string {
	h, _ := blake2b.New256(nil)
	writeField := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	writeField(v.DocumentType)
	writeField(v.Entity)
	writeField(v.VoucherDate.UTC().Format(time.DateOnly))
	for _, l := range v.Lines {
		writeField(l.AccountID)
		writeField(l.Debit.String())
		writeField(l.Credit.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ScopeKey returns the numbering scope of the voucher.
func (v *Voucher) ScopeKey() ScopeKey {
	return ScopeKey{Entity: v.Entity, DocumentType: v.DocumentType, FiscalYear: v.FiscalYear}
}

// Clone returns a deep copy safe to mutate.
func (v *Voucher) Clone() *Voucher {
	c := *v
	c.Lines = append([]VoucherLine(nil), v.Lines...)
	if v.ReversalOf != nil {
		id := *v.ReversalOf
		c.ReversalOf = &id
	}
	if v.PostedAt != nil {
		t := *v.PostedAt
		c.PostedAt = &t
	}
	return &c
}

// FiscalCalendar maps a voucher date to its fiscal year label.
type FiscalCalendar struct {
	// StartMonth is the first month of the fiscal year (1 = January).
	StartMonth time.Month
}

// FiscalYearOf returns the calendar year in which the fiscal year containing t starts.
func (c FiscalCalendar) FiscalYearOf(t time.Time) int {
	start := c.StartMonth
	if start < time.January || start > time.December {
		start = time.January
	}
	if t.Month() < start {
		return t.Year() - 1
	}
	return t.Year()
}
