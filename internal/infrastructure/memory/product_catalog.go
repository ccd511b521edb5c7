package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
)

// ProductCatalog keeps products in a map. UpdateQuantities checks and applies the
// whole batch under one write lock, so a batch is never partially applied.
type ProductCatalog struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewProductCatalog(products ...domain.Product) *ProductCatalog {
	c := &ProductCatalog{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *ProductCatalog) Put(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *ProductCatalog) Get(ctx context.Context, id string) (domain.Product, bool) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

func (c *ProductCatalog) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *ProductCatalog) UpdateQuantities(ctx context.Context, updates []domain.QuantityUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range updates {
		if u.Quantity < 0 {
			return domain.ErrInvalidQuantity
		}
		p, ok := c.products[u.ID]
		if !ok || p.Quantity != u.Expected {
			return domain.ErrStockConflict
		}
	}
	for _, u := range updates {
		p := c.products[u.ID]
		p.Quantity = u.Quantity
		c.products[u.ID] = p
	}
	return nil
}
