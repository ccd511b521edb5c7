package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

// OrderAccepter is the use case behind POST /orders.
type OrderAccepter = application.UseCase[appOrder.AcceptOrderInput, *domorder.Order]

type Handler struct {
	accept OrderAccepter
	log    observability.Logger
	tel    observability.Observability
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerTenantID       = "X-Tenant-ID"
	maxBodyBytes         = 1 << 20
)

func NewHandler(accept OrderAccepter, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		accept: accept,
		log:    tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:    tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Trace → request logger + HTTP metrics → access log → handler
	r.Method(http.MethodPost, "/orders", h.wrap("POST /orders", h.handleAcceptOrder))
	r.Method(http.MethodGet, "/health", h.wrap("GET /health", h.handleHealth))

	return r
}

func (h *Handler) wrap(route string, handler http.HandlerFunc) http.Handler {
	inner := h.withTrace(
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
			func(r *http.Request) string { return r.Header.Get(headerTenantID) },
			h.tel,
		)(
			h.withAccessLog(handler),
		),
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	})
}

type orderProductRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type acceptOrderRequest struct {
	CustomerID string                `json:"customer_id"`
	Products   []orderProductRequest `json:"products"`
}

type orderLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Products   []orderLineResponse `json:"products"`
	Total      string              `json:"total"`
	CreatedAt  time.Time           `json:"created_at"`
}

func (h *Handler) handleAcceptOrder(w http.ResponseWriter, r *http.Request) {
	var req acceptOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	lines := make([]domorder.LineRequest, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, domorder.LineRequest{ProductID: p.ID, Quantity: p.Quantity})
	}

	order, err := h.accept.Execute(r.Context(), appOrder.AcceptOrderInput{
		CustomerID: req.CustomerID,
		Lines:      lines,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func toOrderResponse(o *domorder.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		CustomerID: o.Customer.ID,
		Products:   make([]orderLineResponse, 0, len(o.Lines)),
		Total:      o.Total().StringFixed(2),
		CreatedAt:  o.CreatedAt,
	}
	for _, l := range o.Lines {
		resp.Products = append(resp.Products, orderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price.StringFixed(2),
		})
	}
	return resp
}

// withAccessLog writes a single access log after the handler completes, using the
// request-scoped logger installed by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace starts a server span, continuing any W3C trace context on the request.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("minishop.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		spanName := route
		if spanName == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}
		template := route
		if idx := strings.Index(template, " "); idx >= 0 {
			template = template[idx+1:]
		}
		if template == "unknown" || template == "" {
			template = r.URL.Path
		}

		ctx, span := tracer.Start(parentCtx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", template),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", lrw.status))
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFound     *appOrder.ProductNotFoundError
		insufficient *appOrder.InsufficientStockError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), ProductID: notFound.ProductID})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     err.Error(),
			ProductID: insufficient.ProductID,
			Quantity:  insufficient.Quantity,
		})
	case errors.Is(err, appOrder.ErrCustomerNotFound),
		errors.Is(err, appOrder.ErrNoProductsFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, appOrder.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domproduct.ErrStockConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template so metrics and logs use
// low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}

func statusLabel(code int) string { return strconv.Itoa(code) }
