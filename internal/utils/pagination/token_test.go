package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeKeysetToken(t *testing.T) {
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeKeysetToken(createdAt, "req-1")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeKeysetToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(decodedAt), "Created at time should match after decode")
	assert.Equal(t, "req-1", decodedID)

	// Non-UTC input is normalized but denotes the same instant
	local := createdAt.In(time.FixedZone("X", 5*3600))
	decodedAt, _, err = DecodeKeysetToken(EncodeKeysetToken(local, "req-2"))
	require.NoError(t, err)
	assert.True(t, local.Equal(decodedAt))
}

func TestDecodeKeysetTokenError(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{"invalid base64", "this is not base64!", "base64 decode"},
		{"missing separator", base64.URLEncoding.EncodeToString([]byte("2026-05-15T00:00:00Z")), "split"},
		{"empty id", base64.URLEncoding.EncodeToString([]byte("2026-05-15T00:00:00Z|")), "split"},
		{"bad time", base64.URLEncoding.EncodeToString([]byte("notadate|req-1")), "created_at parse"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeKeysetToken(tc.token)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}
