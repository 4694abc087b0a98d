package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, ev domain.Event) error {
	s.logger.InfoContext(ctx, "Voucher event",
		slog.String("event", string(ev.Type)),
		slog.String("voucher_id", ev.VoucherID),
		slog.String("request_id", ev.RequestID),
		slog.String("actor", ev.Actor),
		slog.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
