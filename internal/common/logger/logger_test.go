package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapAdapter_FieldsAndScoping(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"component": "engine"})

	log.Warn("repository unavailable", map[string]interface{}{
		"error":     errors.New("dial tcp: refused"),
		"companies": 3,
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "repository unavailable", entries[0].Message)
		assert.Equal(t, "engine", ctx["component"])
		assert.Equal(t, "dial tcp: refused", ctx["error"])
		assert.EqualValues(t, 3, ctx["companies"])
	}
}

func TestMapToZapFields_SortedKeys(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{"b": 1, "a": 2, "c": 3})
	if assert.Len(t, fields, 3) {
		assert.Equal(t, "a", fields[0].Key)
		assert.Equal(t, "b", fields[1].Key)
		assert.Equal(t, "c", fields[2].Key)
	}
	assert.Nil(t, mapToZapFields(nil))
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Info("ignored", nil)
	log.WithError(errors.New("boom")).Error("ignored", nil)
}
