// Package notification delivers committed voucher events to external listeners.
package notification

import (
	"fmt"
	"log/slog"

	portssvc "github.com/SscSPs/voucher_engine/internal/core/ports/services"
	"github.com/SscSPs/voucher_engine/internal/platform/config"
	"github.com/SscSPs/voucher_engine/internal/utils"
	"github.com/redis/go-redis/v9"
)

// Sink is a NotificationSink that owns resources released on shutdown.
type Sink interface {
	portssvc.NotificationSink
	Close() error
}

// New builds the sink selected by NOTIFY_DRIVER. It returns nil for "none".
func New(cfg *config.Config, logger *slog.Logger) (Sink, error) {
	switch cfg.NotifyDriver {
	case config.NotifyNone:
		return nil, nil
	case config.NotifyLog:
		return NewLogSink(logger), nil
	case config.NotifyPosthog:
		client := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
		if !client.IsInitialized() {
			return nil, fmt.Errorf("posthog notifications need a working client")
		}
		return NewPosthogSink(client), nil
	case config.NotifyRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisSink(client, cfg.RedisChannel), nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.NotifyDriver)
	}
}

// eventProperties flattens an event into analytics properties.
func eventProperties(ev map[string]any, voucherID, requestID string) map[string]any {
	props := make(map[string]any, len(ev)+2)
	for k, v := range ev {
		props[k] = v
	}
	props["voucher_id"] = voucherID
	if requestID != "" {
		props["request_id"] = requestID
	}
	return props
}
