// Package logger builds the zap logger and carries it through contexts.
package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

// New returns a development logger when verbose is set (debug level,
// console output) and a production logger otherwise.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewContext returns a copy of ctx carrying log.
func NewContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// With returns a copy of ctx whose logger has fields added.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return NewContext(ctx, L(ctx).With(fields...))
}

// L returns the logger stored in ctx, falling back to zap.L().
func L(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(contextKey{}).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.L()
}
