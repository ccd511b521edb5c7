package httppresentation

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

// ObservabilityMiddleware installs a request-scoped logger (request_id, tenant_id,
// trace ids), echoes X-Request-ID, and records HTTP request count and duration
// labelled by method, route template and status.
func ObservabilityMiddleware(
	base observability.Logger,
	requestID func(*http.Request) string,
	tenantID func(*http.Request) string,
	tel observability.Observability,
) func(http.Handler) http.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if base == nil {
		base = tel.Logger()
	}
	requests := tel.Metrics().Counter(observability.MHTTPRequests)
	duration := tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			rid := ""
			if requestID != nil {
				rid = requestID(r)
			}
			if rid == "" {
				rid = uuid.NewString()
			}
			tid := ""
			if tenantID != nil {
				tid = tenantID(r)
			}
			w.Header().Set(headerRequestID, rid)

			fields := []observability.Field{observability.F("request_id", rid)}
			if tid != "" {
				fields = append(fields, observability.F("tenant_id", tid))
			}
			if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
				fields = append(fields,
					observability.F("trace_id", sc.TraceID().String()),
					observability.F("span_id", sc.SpanID().String()),
				)
			}
			ctx = logctx.With(ctx, base.With(fields...))

			start := time.Now()
			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r.WithContext(ctx))

			labels := []observability.Label{
				observability.L("method", r.Method),
				observability.L("route", routeFromContext(ctx)),
				observability.L("status", statusLabel(lrw.status)),
			}
			requests.Add(1, labels...)
			duration.Observe(time.Since(start).Seconds(), labels...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
