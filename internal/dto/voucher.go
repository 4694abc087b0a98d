package dto

import (
	"time"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VoucherLineRequest is one debit or credit line of a voucher payload.
// Exactly one of Debit and Credit must be positive; the service enforces it.
type VoucherLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// CreateVoucherRequest defines the data needed to create a draft voucher.
type CreateVoucherRequest struct {
	DocumentType string               `json:"documentType" binding:"required,max=16"`
	Entity       string               `json:"entity" binding:"required,max=64"`
	VoucherDate  time.Time            `json:"voucherDate" binding:"required"`
	Description  string               `json:"description"`
	Lines        []VoucherLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateVoucherRequest replaces the lines of a draft. Optional header fields are kept when nil.
type UpdateVoucherRequest struct {
	VoucherDate *time.Time           `json:"voucherDate,omitempty"`
	Description *string              `json:"description,omitempty"`
	Lines       []VoucherLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReverseVoucherRequest carries the optional header of a reversal voucher.
type ReverseVoucherRequest struct {
	VoucherDate *time.Time `json:"voucherDate,omitempty"` // defaults to the original's date
	Description string     `json:"description"`
}

// CancelVoucherRequest carries the reason recorded in the audit trail.
type CancelVoucherRequest struct {
	Reason string `json:"reason"`
}

// ToDomainLines converts line payloads to domain lines.
func ToDomainLines(lines []VoucherLineRequest) []domain.VoucherLine {
	out := make([]domain.VoucherLine, len(lines))
	for i, l := range lines {
		out[i] = domain.VoucherLine{
			LineNo:    i + 1,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return out
}

// VoucherLineResponse defines the data returned for a voucher line.
type VoucherLineResponse struct {
	LineNo    int             `json:"lineNo"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID      string                `json:"voucherID"`
	DocumentType   string                `json:"documentType"`
	Entity         string                `json:"entity"`
	VoucherDate    string                `json:"voucherDate"`
	FiscalYear     int                   `json:"fiscalYear"`
	Number         string                `json:"number,omitempty"`
	Status         string                `json:"status"`
	ApprovalStatus string                `json:"approvalStatus,omitempty"`
	Description    string                `json:"description,omitempty"`
	TotalDebit     decimal.Decimal       `json:"totalDebit"`
	TotalCredit    decimal.Decimal       `json:"totalCredit"`
	ReversalOf     *string               `json:"reversalOf,omitempty"`
	PostedAt       *time.Time            `json:"postedAt,omitempty"`
	Version        int                   `json:"version"`
	Lines          []VoucherLineResponse `json:"lines"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
	LastUpdatedAt  time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy  string                `json:"lastUpdatedBy"`
}

// ToVoucherResponse converts a domain.Voucher to VoucherResponse DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	lines := make([]VoucherLineResponse, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = VoucherLineResponse{
			LineNo:    l.LineNo,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return VoucherResponse{
		VoucherID:      v.VoucherID,
		DocumentType:   v.DocumentType,
		Entity:         v.Entity,
		VoucherDate:    v.VoucherDate.Format(time.DateOnly),
		FiscalYear:     v.FiscalYear,
		Number:         v.Number,
		Status:         string(v.Status),
		ApprovalStatus: string(v.ApprovalStatus),
		Description:    v.Description,
		TotalDebit:     v.TotalDebit,
		TotalCredit:    v.TotalCredit,
		ReversalOf:     v.ReversalOf,
		PostedAt:       v.PostedAt,
		Version:        v.Version,
		Lines:          lines,
		CreatedAt:      v.CreatedAt,
		CreatedBy:      v.CreatedBy,
		LastUpdatedAt:  v.LastUpdatedAt,
		LastUpdatedBy:  v.LastUpdatedBy,
	}
}
