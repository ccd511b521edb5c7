package memory

import (
	"context"
	"fmt"
	"sync"

	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	ids    id.Generator
}

func NewOrderRepository(ids id.Generator) *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
		ids:    ids,
	}
}

func (r *OrderRepository) Create(ctx context.Context, c domcustomer.Customer, lines []domain.Line) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order, err := domain.New(r.ids.NewID(), c, lines)
	if err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return nil, fmt.Errorf("order repository: duplicate id %s", order.ID)
	}
	r.orders[order.ID] = order.Clone()
	return order, nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
