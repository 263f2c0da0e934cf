package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ServiceFieldAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("clipstream", "warn", &buf)

	l.Info("should be filtered")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "clipstream", entry["service"])
	assert.Equal(t, "kept", entry["msg"])
}

func TestNewWithWriter_LevelAliasesAndCase(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("clipstream", "WARNING", &buf)

	l.Info("should be filtered")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")

	buf.Reset()
	NewWithWriter("clipstream", "nonsense", &buf).Info("info is the fallback")
	assert.Contains(t, buf.String(), "info is the fallback")
}

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))

	ctx = WithCorrelationID(ctx, "corr-123")
	assert.Equal(t, "corr-123", CorrelationIDFromContext(ctx))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := NewWithWriter("clipstream", "info", &buf)
	ctx := NewContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}

func TestWithContext_EnrichesFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("clipstream", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-9")
	ctx = WithUserID(ctx, "user-7")

	WithContext(ctx, base).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-9", entry["correlation_id"])
	assert.Equal(t, "user-7", entry["user_id"])
}
