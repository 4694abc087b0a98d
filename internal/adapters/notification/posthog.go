package notification

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/utils"
)

// PosthogSink captures events in PostHog with the actor as distinct id.
// The client batches in the background, so Notify never waits on the network.
type PosthogSink struct {
	client *utils.PosthogClientWrapper
}

func NewPosthogSink(client *utils.PosthogClientWrapper) *PosthogSink {
	return &PosthogSink{client: client}
}

func (s *PosthogSink) Notify(_ context.Context, ev domain.Event) error {
	return s.client.Enqueue(ev.Actor, string(ev.Type), eventProperties(ev.Properties, ev.VoucherID, ev.RequestID))
}

// Close flushes queued events.
func (s *PosthogSink) Close() error {
	s.client.Close()
	return nil
}
