package workerpresentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

type fieldLogger struct {
	observability.Logger
	fields []observability.Field
}

func (l *fieldLogger) With(fields ...observability.Field) observability.Logger {
	return &fieldLogger{Logger: l.Logger, fields: append(append([]observability.Field(nil), l.fields...), fields...)}
}

func TestWithEventContext(t *testing.T) {
	base := &fieldLogger{Logger: observability.NopLogger()}

	ctx := WithEventContext(context.Background(), base, map[string]string{
		"event_id": "evt-1",
		"use_case": "order.worker.accepted",
		"event":    "order.accepted",
		"empty":    "",
	})

	got, ok := logctx.From(ctx).(*fieldLogger)
	require.True(t, ok)
	assert.Equal(t, []observability.Field{
		observability.F("event_id", "evt-1"),
		observability.F("event", "order.accepted"),
		observability.F("use_case", "order.worker.accepted"),
	}, got.fields)
}

func TestWithEventContext_GeneratesEventID(t *testing.T) {
	ctx := WithEventContext(context.Background(), &fieldLogger{Logger: observability.NopLogger()}, nil)

	got := logctx.From(ctx).(*fieldLogger)
	require.Len(t, got.fields, 1)
	assert.Equal(t, "event_id", got.fields[0].Key)
	assert.NotEmpty(t, got.fields[0].Value)
}
