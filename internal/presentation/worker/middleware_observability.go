package workerpresentation

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

// WithEventContext stores an event-scoped logger on ctx for background handlers.
// The logger carries event_id (generated when attrs has none), the trace and span
// ids of ctx when valid, and the remaining non-empty attrs in key order.
// Keep attrs low-cardinality: event name, use case, queue.
func WithEventContext(ctx context.Context, base observability.Logger, attrs map[string]string) context.Context {
	base = logctx.FromOr(ctx, base)

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields := []observability.Field{observability.F("event_id", evtID)}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}

	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, observability.F(k, attrs[k]))
	}

	return logctx.With(ctx, base.With(fields...))
}
