package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1`, id).Scan(&c.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert adds a customer, ignoring ids that already exist.
func (r *CustomerRepository) Insert(ctx context.Context, c domain.Customer) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO customers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, c.ID)
	return err
}
