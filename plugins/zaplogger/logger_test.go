//go:build unit

package zaplogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kbridge-io/kbridge/logger"
)

func newObserved(t *testing.T) (logger.Logger, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestZapLogger_EmitsFields(t *testing.T) {
	l, logs := newObserved(t)

	l.Info("pipeline started", "topics", []string{"events"}, "mode", "sequential")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pipeline started", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "sequential", fields["mode"])
}

func TestZapLogger_SkipsNonStringKeys(t *testing.T) {
	l, logs := newObserved(t)

	// The bad pair is dropped entirely instead of emitting a zero field,
	// which the encoder cannot handle.
	l.Warn("odd arguments", 42, "oops", "stage", "poll")

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "poll", fields["stage"])
	assert.Len(t, fields, 1)
}

func TestZapLogger_LevelsMap(t *testing.T) {
	l, logs := newObserved(t)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZapLogger_WithBindsKeyValues(t *testing.T) {
	l, logs := newObserved(t)

	l.With("component", "pipeline").Info("bound")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pipeline", entries[0].ContextMap()["component"])
}
