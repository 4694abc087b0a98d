package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/middleware"
	"github.com/google/uuid"
)

// auditTrail chains entries per stream: each entry hashes its content together
// with the hash of the entry before it.
type auditTrail struct {
	BaseService
	repo portsrepo.AuditRepository
}

// NewAuditTrail creates the audit trail service.
func NewAuditTrail(repo portsrepo.AuditRepository) portssvc.AuditTrail {
	return &auditTrail{repo: repo}
}

// Record must run inside the transaction of the change it records, under a lock
// that serializes writers of the same stream.
func (a *auditTrail) Record(ctx context.Context, streamID string, rec portssvc.AuditRecord) (*domain.AuditEntry, error) {
	last, err := a.repo.LastEntry(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit stream %s: %w", streamID, err)
	}

	entry := domain.AuditEntry{
		EntryID:      uuid.NewString(),
		StreamID:     streamID,
		Seq:          1,
		Action:       rec.Action,
		Actor:        rec.Actor,
		Origin:       rec.Origin,
		OccurredAt:   utcNow(),
		StatusBefore: rec.StatusBefore,
		StatusAfter:  rec.StatusAfter,
		Comment:      rec.Comment,
	}
	if entry.Origin == "" {
		entry.Origin = middleware.OriginFromCtx(ctx)
	}
	if last != nil {
		entry.Seq = last.Seq + 1
		entry.PrevHash = last.Hash
	}
	if rec.Payload != nil {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode audit payload: %w", err)
		}
		entry.Payload = payload
	}
	entry.Hash = entry.ComputeHash()

	if err := a.repo.AppendEntry(ctx, entry); err != nil {
		a.LogError(ctx, err, "Failed to append audit entry", slog.String("stream_id", streamID), slog.Int64("seq", entry.Seq))
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return &entry, nil
}

func (a *auditTrail) Entries(ctx context.Context, streamID string) ([]domain.AuditEntry, error) {
	entries, err := a.repo.ListEntries(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit stream %s: %w", streamID, err)
	}
	return entries, nil
}

// Verify recomputes every hash of the stream in order.
func (a *auditTrail) Verify(ctx context.Context, streamID string) (*portssvc.AuditVerification, error) {
	entries, err := a.Entries(ctx, streamID)
	if err != nil {
		return nil, err
	}

	prev := ""
	for i := range entries {
		e := &entries[i]
		var problem string
		switch {
		case e.Seq != int64(i+1):
			problem = fmt.Sprintf("expected seq %d", i+1)
		case e.PrevHash != prev:
			problem = "previous hash does not match"
		case e.ComputeHash() != e.Hash:
			problem = "content hash does not match"
		}
		if problem != "" {
			a.LogWarn(ctx, apperrors.ErrAuditChainBroken, "Audit chain verification failed",
				slog.String("stream_id", streamID), slog.Int64("seq", e.Seq), slog.String("problem", problem))
			return nil, fmt.Errorf("%w: stream %s at seq %d: %s", apperrors.ErrAuditChainBroken, streamID, e.Seq, problem)
		}
		prev = e.Hash
	}
	return &portssvc.AuditVerification{StreamID: streamID, Entries: len(entries), Head: prev}, nil
}
