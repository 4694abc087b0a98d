package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/dto"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/SscSPs/voucher_engine/internal/utils/pagination"
	"github.com/google/uuid"
)

// Default timeouts used when the service is built without options.
const (
	DefaultOperationTimeout = 10 * time.Second
	DefaultNotifyTimeout    = 5 * time.Second
)

// voucherService orchestrates the voucher lifecycle. Every transition locks the
// voucher row first, so per-voucher audit streams have a single writer at a time.
type voucherService struct {
	BaseService
	tx            portsrepo.TransactionManager
	vouchers      portsrepo.VoucherRepositoryFacade
	validator     portssvc.LedgerEntryValidator
	approvals     portssvc.ApprovalEngine
	numbering     portssvc.NumberingService
	audit         portssvc.AuditTrail
	notifier      portssvc.NotificationSink
	calendar      domain.FiscalCalendar
	scale         int32
	timeout       time.Duration
	notifyTimeout time.Duration
}

// VoucherServiceOption configures the voucher service.
type VoucherServiceOption func(*voucherService)

// WithNotificationSink sets where committed events are sent.
func WithNotificationSink(sink portssvc.NotificationSink) VoucherServiceOption {
	return func(s *voucherService) {
		s.notifier = sink
	}
}

// WithFiscalCalendar sets how voucher dates map to fiscal years.
func WithFiscalCalendar(cal domain.FiscalCalendar) VoucherServiceOption {
	return func(s *voucherService) {
		s.calendar = cal
	}
}

// WithMinorUnitScale sets how many fractional digits a draft line amount may carry.
func WithMinorUnitScale(scale int32) VoucherServiceOption {
	return func(s *voucherService) {
		if scale >= 0 {
			s.scale = scale
		}
	}
}

// WithOperationTimeout bounds operations whose context has no deadline.
func WithOperationTimeout(d time.Duration) VoucherServiceOption {
	return func(s *voucherService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNotifyTimeout bounds the delivery of the events of one operation.
func WithNotifyTimeout(d time.Duration) VoucherServiceOption {
	return func(s *voucherService) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewVoucherService creates the voucher lifecycle service.
func NewVoucherService(
	tx portsrepo.TransactionManager,
	vouchers portsrepo.VoucherRepositoryFacade,
	validator portssvc.LedgerEntryValidator,
	approvals portssvc.ApprovalEngine,
	numbering portssvc.NumberingService,
	audit portssvc.AuditTrail,
	options ...VoucherServiceOption,
) portssvc.VoucherSvcFacade {
	s := &voucherService{
		tx:            tx,
		vouchers:      vouchers,
		validator:     validator,
		approvals:     approvals,
		numbering:     numbering,
		audit:         audit,
		calendar:      domain.FiscalCalendar{StartMonth: time.January},
		scale:         DefaultMinorUnitScale,
		timeout:       DefaultOperationTimeout,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// withTimeout applies the operation timeout when the caller gave no deadline.
func (s *voucherService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// notify hands events to the sink after commit. Delivery runs detached from the
// caller and its failures are only logged.
func (s *voucherService) notify(ctx context.Context, events ...domain.Event) {
	if s.notifier == nil || len(events) == 0 {
		return
	}
	logger := s.GetLogger(ctx)
	base := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(base, s.notifyTimeout)
		defer cancel()
		for _, ev := range events {
			if err := s.notifier.Notify(nctx, ev); err != nil {
				logger.Warn("Notification delivery failed",
					slog.String("event", string(ev.Type)),
					slog.String("voucher_id", ev.VoucherID),
					slog.String("error", err.Error()))
			}
		}
	}()
}

func newEvent(t domain.EventType, v *domain.Voucher, actor domain.Actor, props map[string]any) domain.Event {
	return domain.Event{
		Type:       t,
		VoucherID:  v.VoucherID,
		Actor:      actor.UserID,
		OccurredAt: utcNow(),
		Properties: props,
	}
}

func requireActor(actor domain.Actor) error {
	if actor.IsZero() {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

// touch bumps the version and the last-updated fields.
func touch(v *domain.Voucher, actor domain.Actor) {
	v.Version++
	v.LastUpdatedAt = utcNow()
	v.LastUpdatedBy = actor.UserID
}

func (s *voucherService) record(ctx context.Context, v *domain.Voucher, action domain.AuditAction, actor domain.Actor, before domain.VoucherStatus, comment string, payload any) error {
	_, err := s.audit.Record(ctx, domain.VoucherStream(v.VoucherID), portssvc.AuditRecord{
		Action:       action,
		Actor:        actor.UserID,
		StatusBefore: string(before),
		StatusAfter:  string(v.Status),
		Comment:      comment,
		Payload:      payload,
	})
	return err
}

// save stores v guarded by the version it was loaded with.
func (s *voucherService) save(ctx context.Context, v *domain.Voucher, loadedVersion int) error {
	if err := s.vouchers.UpdateVoucher(ctx, *v, loadedVersion); err != nil {
		return fmt.Errorf("failed to update voucher %s: %w", v.VoucherID, err)
	}
	return nil
}

// CreateVoucher persists a draft. Drafts may be unbalanced but every line must be well formed;
// accounts and balance are validated on submit and post.
func (s *voucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, actor domain.Actor) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	v, err := s.newDraft(req.DocumentType, req.Entity, req.VoucherDate, req.Description, dto.ToDomainLines(req.Lines), actor)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.createLocked(ctx, v, actor)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create voucher")
		return nil, err
	}

	s.LogInfo(ctx, "Voucher created", slog.String("voucher_id", v.VoucherID), slog.String("document_type", v.DocumentType))
	return v, nil
}

func (s *voucherService) newDraft(documentType, entity string, date time.Time, description string, lines []domain.VoucherLine, actor domain.Actor) (*domain.Voucher, error) {
	documentType = strings.ToUpper(strings.TrimSpace(documentType))
	entity = strings.TrimSpace(entity)
	if documentType == "" || entity == "" {
		return nil, fmt.Errorf("%w: document type and entity are required", apperrors.ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: voucher date is required", apperrors.ErrValidation)
	}
	if err := CheckLines(lines, s.scale); err != nil {
		return nil, err
	}

	now := utcNow()
	v := &domain.Voucher{
		VoucherID:    uuid.NewString(),
		DocumentType: documentType,
		VoucherDate:  dateOnly(date),
		Entity:       entity,
		Status:       domain.VoucherDraft,
		Description:  description,
		Lines:        lines,
		Version:      1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	v.FiscalYear = s.calendar.FiscalYearOf(v.VoucherDate)
	v.Recalculate()
	return v, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *voucherService) createLocked(ctx context.Context, v *domain.Voucher, actor domain.Actor) error {
	if err := s.vouchers.SaveVoucher(ctx, *v); err != nil {
		return fmt.Errorf("failed to save voucher: %w", err)
	}
	payload := map[string]any{
		"documentType": v.DocumentType,
		"entity":       v.Entity,
		"totalDebit":   v.TotalDebit.String(),
		"totalCredit":  v.TotalCredit.String(),
		"lines":        len(v.Lines),
	}
	if v.ReversalOf != nil {
		payload["reversalOf"] = *v.ReversalOf
	}
	return s.record(ctx, v, domain.AuditVoucherCreated, actor, "", "", payload)
}

func (s *voucherService) GetVoucher(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.vouchers.FindVoucherByID(ctx, voucherID)
}

func (s *voucherService) PreviewNextNumber(ctx context.Context, scope domain.ScopeKey) (domain.Identifier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	scope.DocumentType = strings.ToUpper(scope.DocumentType)
	return s.numbering.Preview(ctx, scope)
}

// UpdateDraft replaces the lines of a draft. Any earlier submission outcome is discarded.
func (s *voucherService) UpdateDraft(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, actor domain.Actor) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	lines := dto.ToDomainLines(req.Lines)
	if err := CheckLines(lines, s.scale); err != nil {
		return nil, err
	}

	var result *domain.Voucher
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vouchers.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if !v.IsEditable() {
			return fmt.Errorf("%w: voucher %s is %s", apperrors.ErrImmutable, v.VoucherID, v.Status)
		}

		loaded := v.Version
		v.Lines = lines
		if req.VoucherDate != nil {
			v.VoucherDate = dateOnly(*req.VoucherDate)
			v.FiscalYear = s.calendar.FiscalYearOf(v.VoucherDate)
		}
		if req.Description != nil {
			v.Description = *req.Description
		}
		v.Recalculate()
		v.ApprovalStatus = domain.ApprovalNotEvaluated
		v.ApprovedFingerprint = ""
		touch(v, actor)

		if err := s.save(ctx, v, loaded); err != nil {
			return err
		}
		if err := s.record(ctx, v, domain.AuditVoucherUpdated, actor, v.Status, "", map[string]any{
			"totalDebit":  v.TotalDebit.String(),
			"totalCredit": v.TotalCredit.String(),
			"lines":       len(v.Lines),
		}); err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Voucher update refused", slog.String("voucher_id", voucherID))
		return nil, err
	}
	return result, nil
}

// SubmitForApproval validates the voucher and opens an approval request. When no
// workflow applies the voucher stays a draft marked NOT_REQUIRED and may be posted.
func (s *voucherService) SubmitForApproval(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var result *domain.Voucher
	var request *domain.ApprovalRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vouchers.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		request, err = s.submitLocked(ctx, v, actor)
		result = v
		return err
	})
	if err != nil {
		s.LogWarn(ctx, err, "Voucher submission refused", slog.String("voucher_id", voucherID), slog.String("code", apperrors.CodeOf(err)))
		return nil, err
	}

	events := []domain.Event{newEvent(domain.EventVoucherSubmitted, result, actor, map[string]any{"approvalStatus": string(result.ApprovalStatus)})}
	if request != nil {
		ev := newEvent(domain.EventApprovalRequested, result, actor, map[string]any{"level": request.CurrentLevel})
		ev.RequestID = request.RequestID
		events = append(events, ev)
	}
	s.notify(ctx, events...)

	s.LogInfo(ctx, "Voucher submitted",
		slog.String("voucher_id", result.VoucherID),
		slog.String("approval_status", string(result.ApprovalStatus)))
	return result, nil
}

func (s *voucherService) submitLocked(ctx context.Context, v *domain.Voucher, actor domain.Actor) (*domain.ApprovalRequest, error) {
	switch v.Status {
	case domain.VoucherDraft:
	case domain.VoucherPosted:
		return nil, fmt.Errorf("%w: voucher %s is posted", apperrors.ErrImmutable, v.VoucherID)
	default:
		return nil, fmt.Errorf("%w: cannot submit a %s voucher", apperrors.ErrInvalidStatus, v.Status)
	}
	if err := s.validator.Validate(ctx, v.Lines); err != nil {
		return nil, err
	}

	loaded := v.Version
	before := v.Status
	touch(v, actor)

	request, err := s.approvals.Initiate(ctx, *v)
	switch {
	case errors.Is(err, apperrors.ErrApprovalNotRequired):
		v.ApprovalStatus = domain.ApprovalNotRequired
	case err != nil:
		return nil, err
	default:
		v.Status = domain.VoucherPendingApproval
		v.ApprovalStatus = domain.ApprovalPending
	}
	v.ApprovedFingerprint = ""

	if err := s.save(ctx, v, loaded); err != nil {
		return nil, err
	}
	payload := map[string]any{"approvalStatus": string(v.ApprovalStatus)}
	if request != nil {
		payload["requestID"] = request.RequestID
	}
	if err := s.record(ctx, v, domain.AuditVoucherSubmitted, actor, before, "", payload); err != nil {
		return nil, err
	}
	return request, nil
}

// Post validates, numbers and marks the voucher posted in one transaction.
func (s *voucherService) Post(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var result *domain.Voucher
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.postLocked(ctx, voucherID, actor)
		result = v
		return err
	})
	if err != nil {
		s.LogWarn(ctx, err, "Voucher posting refused", slog.String("voucher_id", voucherID), slog.String("code", apperrors.CodeOf(err)))
		return nil, err
	}

	s.notify(ctx, newEvent(domain.EventVoucherPosted, result, actor, map[string]any{"number": result.Number}))
	s.LogInfo(ctx, "Voucher posted", slog.String("voucher_id", result.VoucherID), slog.String("number", result.Number))
	return result, nil
}

// postLocked re-reads the voucher under its row lock, so of two concurrent posts
// the second always sees POSTED and never draws a number.
func (s *voucherService) postLocked(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error) {
	v, err := s.vouchers.FindVoucherByIDForUpdate(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if err := s.postingGate(ctx, v); err != nil {
		return nil, err
	}

	verr := s.validator.Validate(ctx, v.Lines)
	if v.ApprovalStatus == domain.ApprovalApproved && v.ContentFingerprint() != v.ApprovedFingerprint {
		return nil, &apperrors.ContentChangedError{Cause: verr}
	}
	if verr != nil {
		return nil, verr
	}

	loaded := v.Version
	before := v.Status
	if v.Number == "" {
		id, err := s.numbering.Next(ctx, v.ScopeKey())
		if err != nil {
			return nil, err
		}
		v.Number = id.Formatted
	}
	if v.ApprovalStatus == domain.ApprovalNotEvaluated {
		v.ApprovalStatus = domain.ApprovalNotRequired
	}
	postedAt := utcNow()
	v.Status = domain.VoucherPosted
	v.PostedAt = &postedAt
	touch(v, actor)

	if err := s.save(ctx, v, loaded); err != nil {
		return nil, err
	}
	if err := s.record(ctx, v, domain.AuditVoucherPosted, actor, before, "", map[string]any{
		"number":      v.Number,
		"totalDebit":  v.TotalDebit.String(),
		"totalCredit": v.TotalCredit.String(),
	}); err != nil {
		return nil, err
	}
	return v, nil
}

// postingGate allows a post only for approved vouchers and for drafts no workflow covers.
func (s *voucherService) postingGate(ctx context.Context, v *domain.Voucher) error {
	switch v.Status {
	case domain.VoucherPosted:
		return fmt.Errorf("%w: voucher %s is already posted as %s", apperrors.ErrImmutable, v.VoucherID, v.Number)
	case domain.VoucherCancelled:
		return apperrors.NewPostingBlocked("voucher is cancelled")
	case domain.VoucherRejected:
		return apperrors.NewPostingBlocked("approval was rejected")
	case domain.VoucherPendingApproval:
		if v.ApprovalStatus != domain.ApprovalApproved {
			return apperrors.NewPostingBlocked("approval is pending")
		}
		return nil
	}

	switch v.ApprovalStatus {
	case domain.ApprovalNotRequired:
		return nil
	case domain.ApprovalNotEvaluated:
		required, err := s.approvals.Requires(ctx, *v)
		if err != nil {
			return err
		}
		if required {
			return apperrors.NewPostingBlocked("approval is required, submit the voucher first")
		}
		return nil
	default:
		return apperrors.NewPostingBlocked(fmt.Sprintf("approval status is %s", v.ApprovalStatus))
	}
}

// Reverse creates an offsetting voucher and drives it through submit and post in
// the same transaction. If the reversal itself needs approval it is returned pending.
func (s *voucherService) Reverse(ctx context.Context, voucherID string, req dto.ReverseVoucherRequest, actor domain.Actor) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var reversal *domain.Voucher
	var original *domain.Voucher
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		orig, err := s.vouchers.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if orig.Status != domain.VoucherPosted {
			return fmt.Errorf("%w: only posted vouchers can be reversed, voucher is %s", apperrors.ErrInvalidStatus, orig.Status)
		}
		if orig.ReversalOf != nil {
			return fmt.Errorf("%w: voucher %s is itself a reversal", apperrors.ErrInvalidStatus, orig.VoucherID)
		}
		existing, err := s.vouchers.FindActiveReversalOf(ctx, orig.VoucherID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: by voucher %s", apperrors.ErrAlreadyReversed, existing.VoucherID)
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		lines := make([]domain.VoucherLine, len(orig.Lines))
		for i, l := range orig.Lines {
			lines[i] = l.Swapped()
		}
		date := orig.VoucherDate
		if req.VoucherDate != nil {
			date = *req.VoucherDate
		}
		description := req.Description
		if description == "" {
			description = fmt.Sprintf("Reversal of %s", orig.Number)
		}

		v, err := s.newDraft(orig.DocumentType, orig.Entity, date, description, lines, actor)
		if err != nil {
			return err
		}
		v.ReversalOf = &orig.VoucherID

		if err := s.createLocked(ctx, v, actor); err != nil {
			return err
		}
		if _, err := s.submitLocked(ctx, v, actor); err != nil {
			return err
		}
		if v.ApprovalStatus == domain.ApprovalNotRequired {
			if v, err = s.postLocked(ctx, v.VoucherID, actor); err != nil {
				return err
			}
		}

		if _, err := s.audit.Record(ctx, domain.VoucherStream(orig.VoucherID), portssvc.AuditRecord{
			Action:       domain.AuditVoucherReversed,
			Actor:        actor.UserID,
			StatusBefore: string(orig.Status),
			StatusAfter:  string(orig.Status),
			Payload:      map[string]any{"reversalID": v.VoucherID, "reversalStatus": string(v.Status)},
		}); err != nil {
			return err
		}
		reversal, original = v, orig
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Voucher reversal refused", slog.String("voucher_id", voucherID), slog.String("code", apperrors.CodeOf(err)))
		return nil, err
	}

	events := []domain.Event{newEvent(domain.EventVoucherReversed, original, actor, map[string]any{"reversalID": reversal.VoucherID})}
	if reversal.Status == domain.VoucherPosted {
		events = append(events, newEvent(domain.EventVoucherPosted, reversal, actor, map[string]any{"number": reversal.Number}))
	}
	s.notify(ctx, events...)

	s.LogInfo(ctx, "Voucher reversed",
		slog.String("voucher_id", original.VoucherID),
		slog.String("reversal_id", reversal.VoucherID),
		slog.String("reversal_status", string(reversal.Status)))
	return reversal, nil
}

// Cancel abandons a draft or rejected voucher. No number is involved.
func (s *voucherService) Cancel(ctx context.Context, voucherID string, actor domain.Actor, reason string) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	lines := dto.ToDomainLines(req.Lines)
	if err := CheckLines(lines, s.scale); err != nil {
		return nil, err
	}

	var result *domain.Voucher
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vouchers.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if v.Status == domain.VoucherPosted {
			return fmt.Errorf("%w: voucher %s is posted", apperrors.ErrImmutable, v.VoucherID)
		}
		if !v.IsCancellable() {
			return fmt.Errorf("%w: cannot cancel a %s voucher", apperrors.ErrInvalidStatus, v.Status)
		}

		loaded, before := v.Version, v.Status
		v.Status = domain.VoucherCancelled
		touch(v, actor)
		if err := s.save(ctx, v, loaded); err != nil {
			return err
		}
		if err := s.record(ctx, v, domain.AuditVoucherCancelled, actor, before, reason, nil); err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Voucher cancellation refused", slog.String("voucher_id", voucherID))
		return nil, err
	}

	s.notify(ctx, newEvent(domain.EventVoucherCancelled, result, actor, nil))
	s.LogInfo(ctx, "Voucher cancelled", slog.String("voucher_id", voucherID))
	return result, nil
}

// Reopen returns a rejected voucher to draft. The rejected request stays closed;
// the next submission initiates a fresh one.
func (s *voucherService) Reopen(ctx context.Context, voucherID string, actor domain.Actor) (*domain.Voucher, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	lines := dto.ToDomainLines(req.Lines)
	if err := CheckLines(lines, s.scale); err != nil {
		return nil, err
	}

	var result *domain.Voucher
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vouchers.FindVoucherByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if v.Status != domain.VoucherRejected {
			return fmt.Errorf("%w: only rejected vouchers can be reopened, voucher is %s", apperrors.ErrInvalidStatus, v.Status)
		}

		loaded, before := v.Version, v.Status
		v.Status = domain.VoucherDraft
		v.ApprovalStatus = domain.ApprovalNotEvaluated
		v.ApprovedFingerprint = ""
		touch(v, actor)
		if err := s.save(ctx, v, loaded); err != nil {
			return err
		}
		if err := s.record(ctx, v, domain.AuditVoucherReopened, actor, before, "", nil); err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Voucher reopen refused", slog.String("voucher_id", voucherID))
		return nil, err
	}
	return result, nil
}

// Approve records an approval. On the final level the voucher captures the
// fingerprint of the content that was approved.
func (s *voucherService) Approve(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error) {
	return s.applyDecision(ctx, requestID, actor, func(ctx context.Context, v *domain.Voucher) (*domain.ApprovalRequest, error) {
		req, err := s.approvals.Approve(ctx, requestID, actor, comment)
		if err != nil {
			return nil, err
		}
		if req.Status == domain.RequestApproved {
			v.ApprovalStatus = domain.ApprovalApproved
			v.ApprovedFingerprint = v.ContentFingerprint()
		}
		return req, nil
	})
}

// Reject records a rejection and moves the voucher to REJECTED.
func (s *voucherService) Reject(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.ApprovalRequest, error) {
	return s.applyDecision(ctx, requestID, actor, func(ctx context.Context, v *domain.Voucher) (*domain.ApprovalRequest, error) {
		req, err := s.approvals.Reject(ctx, requestID, actor, comment)
		if err != nil {
			return nil, err
		}
		v.Status = domain.VoucherRejected
		v.ApprovalStatus = domain.ApprovalRejected
		return req, nil
	})
}

// Delegate hands the current level to another user. The voucher itself is unchanged.
func (s *voucherService) Delegate(ctx context.Context, requestID string, from domain.Actor, to string, comment string) (*domain.ApprovalRequest, error) {
	return s.applyDecision(ctx, requestID, from, func(ctx context.Context, _ *domain.Voucher) (*domain.ApprovalRequest, error) {
		return s.approvals.Delegate(ctx, requestID, from, to, comment)
	})
}

// applyDecision locks the voucher before the engine locks the request, the same
// order submit uses, then stores whatever the decision changed on the voucher.
func (s *voucherService) applyDecision(
	ctx context.Context,
	requestID string,
	actor domain.Actor,
	decide func(ctx context.Context, v *domain.Voucher) (*domain.ApprovalRequest, error),
) (*domain.ApprovalRequest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	current, err := s.approvals.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var result *domain.ApprovalRequest
	var voucher *domain.Voucher
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vouchers.FindVoucherByIDForUpdate(ctx, current.VoucherID)
		if err != nil {
			return err
		}
		loaded := *v
		req, err := decide(ctx, v)
		if err != nil {
			return err
		}
		if v.Status != loaded.Status || v.ApprovalStatus != loaded.ApprovalStatus {
			touch(v, actor)
			if err := s.save(ctx, v, loaded.Version); err != nil {
				return err
			}
		}
		result, voucher = req, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, decisionEvent(result, voucher, actor))
	return result, nil
}

func decisionEvent(req *domain.ApprovalRequest, v *domain.Voucher, actor domain.Actor) domain.Event {
	t := domain.EventApprovalAdvanced
	switch {
	case req.Status == domain.RequestApproved:
		t = domain.EventApprovalApproved
	case req.Status == domain.RequestRejected:
		t = domain.EventApprovalRejected
	case req.DelegatedTo != nil:
		t = domain.EventApprovalDelegated
	}
	props := map[string]any{"level": req.CurrentLevel, "status": string(req.Status)}
	if req.DelegatedTo != nil {
		props["delegatedTo"] = *req.DelegatedTo
	}
	ev := newEvent(t, v, actor, props)
	ev.RequestID = req.RequestID
	return ev
}

func (s *voucherService) PendingApprovalsFor(ctx context.Context, actor domain.Actor) iter.Seq2[domain.ApprovalRequest, error] {
	return s.approvals.PendingFor(ctx, actor)
}

// ListPendingApprovals serves one page of the pending set with a keyset token.
func (s *voucherService) ListPendingApprovals(ctx context.Context, actor domain.Actor, params dto.ListPendingParams) (*dto.ListPendingResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	logger := middleware.GetLoggerFromCtx(ctx)

	var cursor *portsrepo.PendingCursor
	if params.NextToken != "" {
		createdAt, id, err := pagination.DecodeKeysetToken(params.NextToken)
		if err != nil {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		requestID, err := uuid.Parse(id)
		if err != nil {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: pagination token does not name a request", apperrors.ErrValidation)
		}
		cursor = &portsrepo.PendingCursor{CreatedAt: createdAt, RequestID: requestID.String()}
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page, err := s.approvals.PendingPage(ctx, actor, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListPendingResponse{}
	if len(page) > limit {
		page = page[:limit]
		last := page[len(page)-1]
		resp.NextToken = pagination.EncodeKeysetToken(last.CreatedAt, last.RequestID)
	}
	resp.Requests = dto.ToApprovalRequestResponses(page)
	return resp, nil
}
