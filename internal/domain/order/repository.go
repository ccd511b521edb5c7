package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

type Store interface {
	// Create persists a new order for c with the given lines and returns it with its id assigned.
	Create(ctx context.Context, c customer.Customer, lines []Line) (*Order, error)
}
