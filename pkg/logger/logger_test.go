package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Env: "development"})
	assert.Error(t, err)
}

func TestNew_ProductionLevel(t *testing.T) {
	l, err := New(Config{Level: "warn", Env: "production"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestInit_ReplacesGlobal(t *testing.T) {
	require.NoError(t, Init(Config{Level: "debug", Env: "development"}))
	assert.True(t, Logger().Core().Enabled(zapcore.DebugLevel))
	assert.NotNil(t, Sugar())
}

func TestContextHelpers_AddTraceIDs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	Info(ctx, l, "with span", zap.Int("n", 1))
	Warn(context.Background(), l, "without span")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[0].ContextMap()["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}
