package logctx

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

type loggerKey struct{}

// With returns a copy of ctx carrying logger.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the logger stored on ctx, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr is From with a fallback for contexts that carry no logger.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	if fallback == nil {
		return observability.NopLogger()
	}
	return fallback
}

// Enrich binds fields onto the context logger (or fallback) and stores the result back on ctx.
func Enrich(ctx context.Context, fallback observability.Logger, fields ...observability.Field) context.Context {
	return With(ctx, FromOr(ctx, fallback).With(fields...))
}
