package notification_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/voucher_engine/internal/adapters/notification"
	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/SscSPs/voucher_engine/internal/platform/config"
	"github.com/SscSPs/voucher_engine/internal/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postedEvent = domain.Event{
	Type:       domain.EventVoucherPosted,
	VoucherID:  "v-1",
	Actor:      "alice",
	OccurredAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	Properties: map[string]any{"number": "JV-2026-000001"},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisSink_Publishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ctx := context.Background()
	sub := client.Subscribe(ctx, "voucher-events")
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	sink := notification.NewRedisSink(client, "voucher-events")
	require.NoError(t, sink.Notify(ctx, postedEvent))

	select {
	case msg := <-sub.Channel():
		var got domain.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, domain.EventVoucherPosted, got.Type)
		assert.Equal(t, "v-1", got.VoucherID)
		assert.Equal(t, "JV-2026-000001", got.Properties["number"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestRedisSink_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	sink := notification.NewRedisSink(client, "voucher-events")
	mr.Close()

	err := sink.Notify(context.Background(), postedEvent)
	assert.Error(t, err)
}

func TestPosthogSink_FlushesOnClose(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reader io.Reader = r.Body
		if r.Header.Get("Content-Encoding") == "gzip" {
			gz, err := gzip.NewReader(r.Body)
			if err == nil {
				reader = gz
			}
		}
		body, _ := io.ReadAll(reader)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := utils.InitializePosthogClient("phc_test", server.URL, discardLogger())
	require.True(t, client.IsInitialized())

	sink := notification.NewPosthogSink(client)
	require.NoError(t, sink.Notify(context.Background(), postedEvent))
	require.NoError(t, sink.Close())

	mu.Lock()
	defer mu.Unlock()
	joined := strings.Join(bodies, "\n")
	assert.Contains(t, joined, "voucher.posted")
	assert.Contains(t, joined, "v-1")
}

func TestLogSink_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := notification.NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, sink.Notify(context.Background(), postedEvent))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "voucher.posted", line["event"])
	assert.Equal(t, "v-1", line["voucher_id"])
	assert.Equal(t, "alice", line["actor"])
}

func TestNew_SelectsDriver(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
		wantErr bool
		wantT   any
	}{
		{name: "none", cfg: config.Config{NotifyDriver: config.NotifyNone}, wantNil: true},
		{name: "log", cfg: config.Config{NotifyDriver: config.NotifyLog}, wantT: &notification.LogSink{}},
		{name: "redis", cfg: config.Config{NotifyDriver: config.NotifyRedis, RedisAddr: mr.Addr(), RedisChannel: "c"}, wantT: &notification.RedisSink{}},
		{name: "posthog without key", cfg: config.Config{NotifyDriver: config.NotifyPosthog}, wantErr: true},
		{name: "unknown", cfg: config.Config{NotifyDriver: "smoke-signals"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := notification.New(&tt.cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, sink)
				return
			}
			assert.IsType(t, tt.wantT, sink)
			assert.NoError(t, sink.Close())
		})
	}
}
