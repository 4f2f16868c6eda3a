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
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"listing": "offers"})

	log.WithError(errors.New("boom")).Warn("fetch failed", map[string]interface{}{"page": 2})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "fetch failed", entries[0].Message)
		assert.Equal(t, "offers", ctx["listing"])
		assert.Equal(t, int64(2), ctx["page"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestNoOpLogger_DoesNotPanic(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.With(map[string]interface{}{"a": 1}).Info("ok", nil)
		log.Debug("debug", nil)
		log.Error("error", map[string]interface{}{"err": errors.New("x")})
	})
}

func TestForListing(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ForListing(NewZapAdapter(zap.New(core)), "fetcher", "candidates").Info("page fetched", nil)

	if assert.Len(t, logs.All(), 1) {
		ctx := logs.All()[0].ContextMap()
		assert.Equal(t, "fetcher", ctx["component"])
		assert.Equal(t, "candidates", ctx["listing"])
	}

	assert.NotPanics(t, func() {
		ForListing(nil, "engine", "offers").Warn("ignored", nil)
	})
}
