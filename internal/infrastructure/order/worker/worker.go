package worker

import (
	"context"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
	workerpresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/worker"
)

const (
	workerService   = "order-worker"
	useCaseOnAccept = "order.worker.accepted"
)

// Worker reports accepted orders: one log line per order and the accepted
// quantity per product on orders_accepted_lines_total.
type Worker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
	lines      observability.Counter
	requests   observability.Counter
}

func New(subscriber domoutbox.Subscriber, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber: subscriber,
		log:        tel.Logger().With(observability.F("service", workerService)),
		lines:      tel.Metrics().Counter(observability.MOrderLinesAccepted),
		requests:   tel.Metrics().Counter(observability.MUsecaseRequests),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domorder.AcceptedEvent{}.EventName(), w.handleAccepted)
}

func (w *Worker) handleAccepted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.AcceptedEvent)
	if !ok {
		w.count("ignored")
		return nil
	}

	ctx = workerpresentation.WithEventContext(ctx, w.log, map[string]string{
		"event":    evt.EventName(),
		"use_case": useCaseOnAccept,
	})

	for _, l := range evt.Lines {
		w.lines.Add(float64(l.Quantity), observability.L("product_id", l.ProductID))
	}

	logctx.FromOr(ctx, w.log).Info("order_accepted",
		observability.F("order_id", evt.OrderID),
		observability.F("customer_id", evt.CustomerID),
		observability.F("lines", len(evt.Lines)),
		observability.F("total", evt.Total.String()),
	)
	w.count("success")
	return nil
}

func (w *Worker) count(outcome string) {
	w.requests.Add(1,
		observability.L("use_case", useCaseOnAccept),
		observability.L("outcome", outcome),
	)
}
