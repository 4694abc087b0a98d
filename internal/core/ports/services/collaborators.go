package services

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// IdentityProvider tells who is calling.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (domain.Actor, error)
}

// NotificationSink receives events after they are committed.
// Delivery is best effort; callers never wait on or fail because of it.
type NotificationSink interface {
	Notify(ctx context.Context, event domain.Event) error
}
