package domain

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// AuditAction names a state change recorded in the audit trail.
type AuditAction string

const (
	AuditVoucherCreated    AuditAction = "VOUCHER_CREATED"
	AuditVoucherUpdated    AuditAction = "VOUCHER_UPDATED"
	AuditVoucherSubmitted  AuditAction = "VOUCHER_SUBMITTED"
	AuditVoucherPosted     AuditAction = "VOUCHER_POSTED"
	AuditVoucherCancelled  AuditAction = "VOUCHER_CANCELLED"
	AuditVoucherReopened   AuditAction = "VOUCHER_REOPENED"
	AuditVoucherReversed   AuditAction = "VOUCHER_REVERSED"
	AuditApprovalInitiated AuditAction = "APPROVAL_INITIATED"
	AuditApprovalApproved  AuditAction = "APPROVAL_APPROVED"
	AuditApprovalAdvanced  AuditAction = "APPROVAL_ADVANCED"
	AuditApprovalRejected  AuditAction = "APPROVAL_REJECTED"
	AuditApprovalDelegated AuditAction = "APPROVAL_DELEGATED"
)

// VoucherStream is the audit stream of a voucher and everything that happens to it.
func VoucherStream(voucherID string) string {
	return "voucher:" + voucherID
}

// AuditEntry is one link of a per-stream hash chain.
type AuditEntry struct {
	EntryID      string          `json:"entryID"`
	StreamID     string          `json:"streamID"`
	Seq          int64           `json:"seq"`
	Action       AuditAction     `json:"action"`
	Actor        string          `json:"actor"`
	Origin       string          `json:"origin,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
	StatusBefore string          `json:"statusBefore,omitempty"`
	StatusAfter  string          `json:"statusAfter,omitempty"`
	Comment      string          `json:"comment,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	PrevHash     string          `json:"prevHash"`
	Hash         string          `json:"hash"`
}

// ComputeHash returns the chain hash of the entry over PrevHash and its content fields.
func (e *AuditEntry) ComputeHash() string {
	h, _ := blake2b.New256(nil)
	write := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(e.Seq))

	write(e.PrevHash)
	write(e.StreamID)
	h.Write(seq[:])
	write(string(e.Action))
	write(e.Actor)
	write(e.Origin)
	write(e.OccurredAt.UTC().Format(time.RFC3339Nano))
	write(e.StatusBefore)
	write(e.StatusAfter)
	write(e.Comment)
	write(string(e.Payload))
	return hex.EncodeToString(h.Sum(nil))
}
