package product

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice    = errors.New("product: price must be zero or greater")
	ErrInvalidQuantity = errors.New("product: quantity must be zero or greater")
	// ErrStockConflict means a product's stock moved between validation and decrement.
	ErrStockConflict = errors.New("product: stock changed concurrently")
)

type Product struct {
	ID       string
	Price    decimal.Decimal
	Quantity int
}

func New(id string, price decimal.Decimal, quantity int) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ID:       id,
		Price:    price,
		Quantity: quantity,
	}, nil
}

// QuantityUpdate sets a product's stock to Quantity, provided it still holds Expected.
type QuantityUpdate struct {
	ID       string
	Quantity int
	Expected int
}
