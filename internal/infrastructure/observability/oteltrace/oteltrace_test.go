package oteltrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewWithProvider_StartsSpansOnContext(t *testing.T) {
	tr := NewWithProvider(noop.NewTracerProvider(), "test")

	ctx, span := tr.Start(context.Background(), "UC.AcceptOrder", attribute.String("use_case", "order.accept"))
	defer span.End()

	assert.Equal(t, span, trace.SpanFromContext(ctx))
}

func TestNew_DefaultsName(t *testing.T) {
	assert.NotNil(t, New(""))
}
