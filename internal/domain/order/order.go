package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
	ErrNoLines         = errors.New("order: at least one line is required")
)

// LineRequest is one requested product and quantity. It is never persisted.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// Line is an accepted order line. Price is the product price at acceptance time.
type Line struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID        string
	Customer  customer.Customer
	Lines     []Line
	CreatedAt time.Time
}

func New(id string, c customer.Customer, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	return &Order{
		ID:        id,
		Customer:  c,
		Lines:     append([]Line(nil), lines...),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}
