package order

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("order: invalid request")
	ErrCustomerNotFound  = errors.New("order: customer not found")
	ErrNoProductsFound   = errors.New("order: could not find any product with the given ids")
	ErrProductNotFound   = errors.New("order: product not found")
	ErrInsufficientStock = errors.New("order: insufficient stock")
)

// ProductNotFoundError names the first requested product, in request order, missing from the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("order: could not find product %s", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// InsufficientStockError names the first line, in request order, asking for more than is in stock.
type InsufficientStockError struct {
	ProductID string
	Quantity  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("order: the quantity %d is not available for %s", e.Quantity, e.ProductID)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}
