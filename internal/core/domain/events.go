package domain

import "time"

// EventType names a notification sent to external listeners.
type EventType string

const (
	EventVoucherSubmitted  EventType = "voucher.submitted"
	EventVoucherPosted     EventType = "voucher.posted"
	EventVoucherCancelled  EventType = "voucher.cancelled"
	EventVoucherReversed   EventType = "voucher.reversed"
	EventApprovalRequested EventType = "approval.requested"
	EventApprovalAdvanced  EventType = "approval.advanced"
	EventApprovalApproved  EventType = "approval.approved"
	EventApprovalRejected  EventType = "approval.rejected"
	EventApprovalDelegated EventType = "approval.delegated"
)

// Event is a fire-and-forget notification about a committed change.
type Event struct {
	Type       EventType      `json:"type"`
	VoucherID  string         `json:"voucherID"`
	RequestID  string         `json:"requestID,omitempty"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurredAt"`
	Properties map[string]any `json:"properties,omitempty"`
}
