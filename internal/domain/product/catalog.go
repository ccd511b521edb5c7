package product

import "context"

type Catalog interface {
	// FindAllByID resolves ids in one call. Unknown ids are omitted from the result.
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)
	// UpdateQuantities applies every update or none of them. It returns ErrStockConflict
	// when a product is missing or no longer holds its Expected quantity.
	UpdateQuantities(ctx context.Context, updates []QuantityUpdate) error
}
