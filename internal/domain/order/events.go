package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// AcceptedEvent is emitted once an order has been persisted and its stock decremented.
type AcceptedEvent struct {
	OrderID    string
	CustomerID string
	Lines      []Line
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (AcceptedEvent) EventName() string { return "order.accepted" }

func NewAcceptedEvent(o *Order) AcceptedEvent {
	return AcceptedEvent{
		OrderID:    o.ID,
		CustomerID: o.Customer.ID,
		Lines:      append([]Line(nil), o.Lines...),
		Total:      o.Total(),
		OccurredAt: time.Now().UTC(),
	}
}
