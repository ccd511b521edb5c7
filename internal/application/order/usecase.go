package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	domproduct "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderAccept = "order.accept"
	spanPrefix         = "UC."

	peerCustomers = "customers"
	peerCatalog   = "catalog"
	peerOrders    = "orders"
	peerOutbox    = "outbox"

	publishTimeout = 300 * time.Millisecond
)

var _ application.UseCase[AcceptOrderInput, *domain.Order] = (*AcceptOrderUseCase)(nil)

// AcceptOrderUseCase validates a purchase request against the customer list and the
// product catalog, records the order with snapshotted prices and consumes its stock.
//
// It holds no lock of its own. Two concurrent requests for the same product can both
// pass validation; the catalog's guarded UpdateQuantities rejects the loser with
// domproduct.ErrStockConflict.
type AcceptOrderUseCase struct {
	customers CustomerLookup
	catalog   ProductCatalog
	orders    OrderStore
	publisher domoutbox.Publisher

	log    observability.Logger
	tracer observability.Tracer

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewAcceptOrderUseCase wires the collaborators. publisher and tel may be nil.
func NewAcceptOrderUseCase(
	customers CustomerLookup,
	catalog ProductCatalog,
	orders OrderStore,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *AcceptOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	return &AcceptOrderUseCase{
		customers:    customers,
		catalog:      catalog,
		orders:       orders,
		publisher:    publisher,
		log:          tel.Logger().With(observability.F("service", orderService)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

type AcceptOrderInput struct {
	CustomerID string
	Lines      []domain.LineRequest
}

// Execute runs the acceptance pipeline. Rejections are reported in a fixed order:
// invalid request, unknown customer, no products found, first unknown product,
// first line short on stock.
func (uc *AcceptOrderUseCase) Execute(ctx context.Context, cmd AcceptOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderAccept),
		observability.F("customer_id", cmd.CustomerID),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"AcceptOrder",
		attribute.String("use_case", useCaseOrderAccept),
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.Int("order.lines", len(cmd.Lines)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var orderID string
	var publishErr error

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderAccept),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseOrderAccept))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	if verr := validateInput(cmd); verr != nil {
		outcome, statusText = "rejected", "INVALID_REQUEST"
		return nil, verr
	}

	var cust *domcustomer.Customer
	err = uc.call(ctx, peerCustomers, "find_by_id", func(ctx context.Context) error {
		var ferr error
		cust, ferr = uc.customers.FindByID(ctx, cmd.CustomerID)
		return ferr
	})
	switch {
	case errors.Is(err, domcustomer.ErrNotFound), err == nil && cust == nil:
		outcome, statusText = "rejected", "CUSTOMER_NOT_FOUND"
		return nil, ErrCustomerNotFound
	case err != nil:
		outcome, statusText = "error", "CUSTOMER_LOOKUP_FAILED"
		return nil, fmt.Errorf("order: find customer: %w", err)
	}

	var products []domproduct.Product
	err = uc.call(ctx, peerCatalog, "find_all_by_id", func(ctx context.Context) error {
		var ferr error
		products, ferr = uc.catalog.FindAllByID(ctx, productIDs(cmd.Lines))
		return ferr
	})
	if err != nil {
		outcome, statusText = "error", "CATALOG_LOOKUP_FAILED"
		return nil, fmt.Errorf("order: find products: %w", err)
	}
	if len(products) == 0 {
		outcome, statusText = "rejected", "NO_PRODUCTS_FOUND"
		return nil, ErrNoProductsFound
	}

	resolved := make(map[string]domproduct.Product, len(products))
	for _, p := range products {
		resolved[p.ID] = p
	}

	for _, l := range cmd.Lines {
		if _, ok := resolved[l.ProductID]; !ok {
			outcome, statusText = "rejected", "PRODUCT_NOT_FOUND"
			return nil, &ProductNotFoundError{ProductID: l.ProductID}
		}
	}
	for _, l := range cmd.Lines {
		if l.Quantity > resolved[l.ProductID].Quantity {
			outcome, statusText = "rejected", "INSUFFICIENT_STOCK"
			return nil, &InsufficientStockError{ProductID: l.ProductID, Quantity: l.Quantity}
		}
	}

	lines := make([]domain.Line, 0, len(cmd.Lines))
	updates := make([]domproduct.QuantityUpdate, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		p := resolved[l.ProductID]
		lines = append(lines, domain.Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     p.Price,
		})
		updates = append(updates, domproduct.QuantityUpdate{
			ID:       p.ID,
			Quantity: p.Quantity - l.Quantity,
			Expected: p.Quantity,
		})
	}

	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	var created *domain.Order
	err = uc.call(ctx, peerOrders, "create", func(ctx context.Context) error {
		var cerr error
		created, cerr = uc.orders.Create(ctx, *cust, lines)
		return cerr
	})
	if err != nil {
		outcome, statusText = "error", "ORDER_CREATE_FAILED"
		return nil, fmt.Errorf("order: create: %w", err)
	}
	orderID = created.ID
	span.SetAttributes(attribute.String("order.id", orderID))

	err = uc.call(ctx, peerCatalog, "update_quantities", func(ctx context.Context) error {
		return uc.catalog.UpdateQuantities(ctx, updates)
	})
	if err != nil {
		outcome, statusText = "error", "STOCK_DECREMENT_FAILED"
		logger.Error("stock_decrement_failed",
			observability.F("order_id", orderID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("order: update quantities: %w", err)
	}

	span.AddEvent("order.accepted",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.total", created.Total().String()),
		),
	)

	if uc.publisher != nil {
		publishErr = uc.call(ctx, peerOutbox, domain.AcceptedEvent{}.EventName(), func(ctx context.Context) error {
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			if perr := uc.publisher.Publish(pubCtx, domain.NewAcceptedEvent(created)); perr != nil {
				return perr
			}
			return pubCtx.Err()
		})
		if publishErr != nil {
			statusText = "EVENT_PUBLISH_FAILED"
		}
	}

	return created, nil
}

// call runs one collaborator request and records it under external_requests_total.
func (uc *AcceptOrderUseCase) call(ctx context.Context, peer, endpoint string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)

	outcome := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}

	uc.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
	return err
}

func validateInput(cmd AcceptOrderInput) error {
	if cmd.CustomerID == "" {
		return newValidation("customer id is required")
	}
	if len(cmd.Lines) == 0 {
		return newValidation("at least one product is required")
	}
	seen := make(map[string]struct{}, len(cmd.Lines))
	for _, l := range cmd.Lines {
		if l.ProductID == "" {
			return newValidation("product id is required")
		}
		if l.Quantity <= 0 {
			return newValidation(fmt.Sprintf("quantity for %s must be greater than zero", l.ProductID))
		}
		if _, dup := seen[l.ProductID]; dup {
			return newValidation(fmt.Sprintf("product %s is listed more than once", l.ProductID))
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

func productIDs(lines []domain.LineRequest) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
