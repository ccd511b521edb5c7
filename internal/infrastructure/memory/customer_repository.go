package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
}

func NewCustomerRepository(customers ...domain.Customer) *CustomerRepository {
	r := &CustomerRepository{customers: make(map[string]domain.Customer, len(customers))}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *CustomerRepository) Put(c domain.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}
