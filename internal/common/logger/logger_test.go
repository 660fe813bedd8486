package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZapAdapter(zap.New(core)), logs
}

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	log.Debug("hidden", nil)
	log.Info("processing job", map[string]interface{}{"jobKey": int64(42), "taskType": "qualify-lenders"})
	log.Error("job failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "processing job", entries[0].Message)
	assert.Equal(t, int64(42), entries[0].ContextMap()["jobKey"])
	assert.Equal(t, "qualify-lenders", entries[0].ContextMap()["taskType"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestZapWrapper_WithFieldsIsScoped(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	scoped := log.WithFields(map[string]interface{}{"taskType": "extract-document-fields"})
	scoped.WithError(errors.New("decode failed")).Warn("extraction failed", nil)
	log.Info("unscoped", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "extract-document-fields", entries[0].ContextMap()["taskType"])
	assert.Equal(t, "decode failed", entries[0].ContextMap()["error"])
	assert.NotContains(t, entries[1].ContextMap(), "taskType")
}

func TestToZapFields_SortedKeys(t *testing.T) {
	fields := toZapFields(map[string]interface{}{"b": 1, "a": 2, "c": 3})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "c", fields[2].Key)
	assert.Nil(t, toZapFields(nil))
}

func TestNew(t *testing.T) {
	l, err := New(Options{Level: "debug", Format: "json", Service: "mca-workers"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
}
