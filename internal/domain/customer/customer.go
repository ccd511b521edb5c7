package customer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("customer: not found")

// Customer is only ever checked for existence while accepting an order.
type Customer struct {
	ID string
}

type Repository interface {
	// FindByID returns ErrNotFound when no customer has the given id.
	FindByID(ctx context.Context, id string) (*Customer, error)
}
