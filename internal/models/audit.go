package models

import "time"

// AuditEntry is a row of the append-only audit_entries table.
// Payload holds the exact bytes that were hashed.
type AuditEntry struct {
	EntryID      string    `db:"entry_id"`
	StreamID     string    `db:"stream_id"`
	Seq          int64     `db:"seq"`
	Action       string    `db:"action"`
	Actor        string    `db:"actor"`
	Origin       string    `db:"origin"`
	OccurredAt   time.Time `db:"occurred_at"`
	StatusBefore string    `db:"status_before"`
	StatusAfter  string    `db:"status_after"`
	Comment      string    `db:"comment"`
	Payload      string    `db:"payload"`
	PrevHash     string    `db:"prev_hash"`
	Hash         string    `db:"hash"`
}
