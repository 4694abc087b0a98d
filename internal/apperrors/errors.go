package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind groups errors by how a caller can recover from them.
type Kind int

const (
	KindInternal Kind = iota
	// KindValidation errors are fixed by editing the document.
	KindValidation
	// KindAuthorization errors are fixed by routing to the correct actor.
	KindAuthorization
	// KindStateConflict errors are fixed by refreshing and retrying.
	KindStateConflict
	// KindNotFound is terminal for that call.
	KindNotFound
	// KindContract marks a caller bug (nil or malformed input) and is never retried.
	KindContract
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindAuthorization:
		return "AUTHORIZATION"
	case KindStateConflict:
		return "STATE_CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindContract:
		return "CONTRACT_VIOLATION"
	default:
		return "INTERNAL"
	}
}

// kindError is a sentinel that knows its category.
type kindError struct {
	kind Kind
	code string
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func newKind(kind Kind, code, msg string) *kindError {
	return &kindError{kind: kind, code: code, msg: msg}
}

// Validation errors.
var (
	ErrValidation             = newKind(KindValidation, "VALIDATION_ERROR", "validation error")
	ErrBalanceMismatch        = newKind(KindValidation, "BALANCE_MISMATCH", "total debit does not equal total credit")
	ErrInvalidLine            = newKind(KindValidation, "INVALID_LINE", "invalid voucher line")
	ErrCommentRequired        = newKind(KindValidation, "COMMENT_REQUIRED", "a comment is required to reject")
	ErrApprovedContentChanged = newKind(KindValidation, "APPROVED_CONTENT_CHANGED", "approved content changed since approval")
)

// Authorization errors.
var (
	ErrNotAuthorized           = newKind(KindAuthorization, "NOT_AUTHORIZED", "actor is not authorized for this approval level")
	ErrSelfApprovalForbidden   = newKind(KindAuthorization, "SELF_APPROVAL_FORBIDDEN", "the document creator cannot approve it")
	ErrSelfDelegationForbidden = newKind(KindAuthorization, "SELF_DELEGATION_FORBIDDEN", "delegation to self or to the document creator is forbidden")
	ErrUnauthenticated         = newKind(KindAuthorization, "UNAUTHENTICATED", "no authenticated user")
)

// State conflict errors.
var (
	ErrConflict            = newKind(KindStateConflict, "CONFLICT", "state conflict")
	ErrAlreadyFinalized    = newKind(KindStateConflict, "ALREADY_FINALIZED", "approval request is already finalized")
	ErrImmutable           = newKind(KindStateConflict, "IMMUTABLE", "voucher can no longer be modified")
	ErrDuplicateRequest    = newKind(KindStateConflict, "DUPLICATE_REQUEST", "an open approval request already exists for this voucher")
	ErrNumberingConflict   = newKind(KindStateConflict, "NUMBERING_CONFLICT", "document number already issued")
	ErrApprovalConflict    = newKind(KindStateConflict, "APPROVAL_CONFLICT", "approval request was modified concurrently")
	ErrPostingBlocked      = newKind(KindStateConflict, "POSTING_BLOCKED", "voucher cannot be posted")
	ErrAlreadyReversed     = newKind(KindStateConflict, "ALREADY_REVERSED", "voucher already has a reversal")
	ErrInvalidStatus       = newKind(KindStateConflict, "INVALID_STATUS", "operation not allowed in the current status")
	ErrApprovalNotRequired = newKind(KindStateConflict, "APPROVAL_NOT_REQUIRED", "no approval workflow applies")
	ErrAuditChainBroken    = newKind(KindStateConflict, "AUDIT_CHAIN_BROKEN", "audit chain verification failed")
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = newKind(KindNotFound, "NOT_FOUND", "resource not found")

// ErrInvalidScope is returned for a malformed numbering scope.
var ErrInvalidScope = newKind(KindContract, "INVALID_SCOPE", "invalid numbering scope")

// ErrInternal wraps infrastructure failures.
var ErrInternal = newKind(KindInternal, "INTERNAL", "internal error")

// KindOf reports the category of err, KindInternal when it has none.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// CodeOf returns the stable machine-readable code of err.
func CodeOf(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.code
	}
	return ErrInternal.code
}

// BalanceMismatchError carries the totals of an unbalanced voucher.
type BalanceMismatchError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Difference is debit minus credit.
func (e *BalanceMismatchError) Difference() decimal.Decimal {
	return e.TotalDebit.Sub(e.TotalCredit)
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("%s: debit %s, credit %s, difference %s",
		ErrBalanceMismatch.msg, e.TotalDebit.String(), e.TotalCredit.String(), e.Difference().String())
}

func (e *BalanceMismatchError) Unwrap() error { return ErrBalanceMismatch }

// InvalidLineError points to the first structurally invalid line.
type InvalidLineError struct {
	Index  int
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("%s at index %d: %s", ErrInvalidLine.msg, e.Index, e.Reason)
}

func (e *InvalidLineError) Unwrap() error { return ErrInvalidLine }

// PostingBlockedError explains why a post was refused.
type PostingBlockedError struct {
	Reason string
}

func (e *PostingBlockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPostingBlocked.msg, e.Reason)
}

func (e *PostingBlockedError) Unwrap() error { return ErrPostingBlocked }

// NewPostingBlocked builds a PostingBlockedError.
func NewPostingBlocked(reason string) error {
	return &PostingBlockedError{Reason: reason}
}

// ContentChangedError is returned when a posted-for-approval voucher no longer matches what was approved.
// It wraps the balance failure (if any) found on re-validation.
type ContentChangedError struct {
	Cause error
}

func (e *ContentChangedError) Error() string {
	if e.Cause == nil {
		return ErrApprovedContentChanged.msg
	}
	return fmt.Sprintf("%s: %v", ErrApprovedContentChanged.msg, e.Cause)
}

// Unwrap exposes both the content-changed sentinel and the underlying cause.
func (e *ContentChangedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrApprovedContentChanged}
	}
	return []error{ErrApprovedContentChanged, e.Cause}
}
