package dto

import "github.com/SscSPs/voucher_engine/internal/core/domain"

// PreviewNumberParams defines the query parameters of the number preview.
type PreviewNumberParams struct {
	Entity       string `form:"entity" binding:"required"`
	DocumentType string `form:"documentType" binding:"required"`
	FiscalYear   int    `form:"fiscalYear" binding:"required,min=1"`
}

// Scope converts the parameters to a numbering scope.
func (p PreviewNumberParams) Scope() domain.ScopeKey {
	return domain.ScopeKey{Entity: p.Entity, DocumentType: p.DocumentType, FiscalYear: p.FiscalYear}
}

// IdentifierResponse defines the data returned for a (previewed) document number.
type IdentifierResponse struct {
	Entity       string `json:"entity"`
	DocumentType string `json:"documentType"`
	FiscalYear   int    `json:"fiscalYear"`
	Value        int64  `json:"value"`
	Number       string `json:"number"`
}

// ToIdentifierResponse converts a domain.Identifier.
func ToIdentifierResponse(id domain.Identifier) IdentifierResponse {
	return IdentifierResponse{
		Entity:       id.Scope.Entity,
		DocumentType: id.Scope.DocumentType,
		FiscalYear:   id.Scope.FiscalYear,
		Value:        id.Value,
		Number:       id.Formatted,
	}
}
