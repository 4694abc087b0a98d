package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
)

// numberingService issues document numbers from a stored counter per scope.
// It never keeps a counter in process memory.
type numberingService struct {
	BaseService
	sequences     portsrepo.SequenceRepository
	defaultFormat domain.NumberFormat
	formats       map[string]domain.NumberFormat
}

// NewNumberingService creates a numbering service. formats is keyed by document type;
// types without an entry use defaultFormat.
func NewNumberingService(sequences portsrepo.SequenceRepository, defaultFormat domain.NumberFormat, formats map[string]domain.NumberFormat) portssvc.NumberingService {
	return &numberingService{
		sequences:     sequences,
		defaultFormat: defaultFormat,
		formats:       formats,
	}
}

func (s *numberingService) formatFor(documentType string) domain.NumberFormat {
	if f, ok := s.formats[documentType]; ok {
		return f
	}
	return s.defaultFormat
}

// Next consumes one value of the scope. Aborted callers may leave gaps; values never repeat.
func (s *numberingService) Next(ctx context.Context, scope domain.ScopeKey) (domain.Identifier, error) {
	if !scope.Valid() {
		return domain.Identifier{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidScope, scope.String())
	}

	value, err := s.sequences.Increment(ctx, scope)
	if err != nil {
		s.LogError(ctx, err, "Failed to increment number sequence", slog.String("scope", scope.String()))
		return domain.Identifier{}, fmt.Errorf("failed to issue number for %s: %w", scope, err)
	}

	id := domain.Identifier{Scope: scope, Value: value, Formatted: s.formatFor(scope.DocumentType).Format(scope, value)}
	s.LogDebug(ctx, "Number issued", slog.String("scope", scope.String()), slog.String("number", id.Formatted))
	return id, nil
}

// Preview reads the counter and formats the value after it. Nothing is reserved.
func (s *numberingService) Preview(ctx context.Context, scope domain.ScopeKey) (domain.Identifier, error) {
	if !scope.Valid() {
		return domain.Identifier{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidScope, scope.String())
	}

	last, err := s.sequences.Peek(ctx, scope)
	if err != nil {
		s.LogError(ctx, err, "Failed to read number sequence", slog.String("scope", scope.String()))
		return domain.Identifier{}, fmt.Errorf("failed to preview number for %s: %w", scope, err)
	}
	next := last + 1
	return domain.Identifier{Scope: scope, Value: next, Formatted: s.formatFor(scope.DocumentType).Format(scope, next)}, nil
}
