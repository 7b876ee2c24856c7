package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLFallsBackToGlobal(t *testing.T) {
	assert.Same(t, zap.L(), L(context.Background()))
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := NewContext(context.Background(), zap.New(core))
	ctx = With(ctx, zap.Int("window", 7))

	L(ctx).Info("hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "hello", entries[0].Message)
		assert.Equal(t, int64(7), entries[0].ContextMap()["window"])
	}
}
