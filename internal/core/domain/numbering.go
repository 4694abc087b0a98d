package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ScopeKey identifies one numbering sequence.
type ScopeKey struct {
	Entity       string `json:"entity"`
	DocumentType string `json:"documentType"`
	FiscalYear   int    `json:"fiscalYear"`
}

// Valid reports whether every component of the scope is set.
func (k ScopeKey) Valid() bool {
	return strings.TrimSpace(k.Entity) != "" && strings.TrimSpace(k.DocumentType) != "" && k.FiscalYear > 0
}

func (k ScopeKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Entity, k.DocumentType, k.FiscalYear)
}

// NumberFormat controls how the numeric core of a scope is rendered.
type NumberFormat struct {
	Prefix            string `mapstructure:"prefix"`
	Separator         string `mapstructure:"separator"`
	Padding           int    `mapstructure:"padding"`
	IncludeFiscalYear bool   `mapstructure:"include_fiscal_year"`
	IncludeEntity     bool   `mapstructure:"include_entity"`
}

// Format renders value for scope, e.g. INV-2026-000041.
func (f NumberFormat) Format(scope ScopeKey, value int64) string {
	prefix := f.Prefix
	if prefix == "" {
		prefix = scope.DocumentType
	}
	parts := []string{prefix}
	if f.IncludeEntity {
		parts = append(parts, scope.Entity)
	}
	if f.IncludeFiscalYear {
		parts = append(parts, strconv.Itoa(scope.FiscalYear))
	}
	digits := strconv.FormatInt(value, 10)
	if pad := f.Padding - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	parts = append(parts, digits)
	return strings.Join(parts, f.Separator)
}

// Identifier is an issued document number.
type Identifier struct {
	Scope     ScopeKey `json:"scope"`
	Value     int64    `json:"value"`
	Formatted string   `json:"formatted"`
}
