package mapping

import (
	"encoding/json"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/models"
)

// ToModelAuditEntry converts a domain AuditEntry to a model AuditEntry
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		EntryID:      d.EntryID,
		StreamID:     d.StreamID,
		Seq:          d.Seq,
		Action:       string(d.Action),
		Actor:        d.Actor,
		Origin:       d.Origin,
		OccurredAt:   d.OccurredAt,
		StatusBefore: d.StatusBefore,
		StatusAfter:  d.StatusAfter,
		Comment:      d.Comment,
		Payload:      string(d.Payload),
		PrevHash:     d.PrevHash,
		Hash:         d.Hash,
	}
}

// ToDomainAuditEntry converts a model AuditEntry to a domain AuditEntry
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	d := domain.AuditEntry{
		EntryID:      m.EntryID,
		StreamID:     m.StreamID,
		Seq:          m.Seq,
		Action:       domain.AuditAction(m.Action),
		Actor:        m.Actor,
		Origin:       m.Origin,
		OccurredAt:   m.OccurredAt.UTC(),
		StatusBefore: m.StatusBefore,
		StatusAfter:  m.StatusAfter,
		Comment:      m.Comment,
		PrevHash:     m.PrevHash,
		Hash:         m.Hash,
	}
	if m.Payload != "" {
		d.Payload = json.RawMessage(m.Payload)
	}
	return d
}

// ToDomainAuditEntrySlice converts a slice of model entries
func ToDomainAuditEntrySlice(ms []models.AuditEntry) []domain.AuditEntry {
	ds := make([]domain.AuditEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditEntry(m)
	}
	return ds
}
