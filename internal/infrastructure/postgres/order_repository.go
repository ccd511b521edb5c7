package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
)

type OrderRepository struct {
	pool *pgxpool.Pool
	ids  id.Generator
}

func NewOrderRepository(pool *pgxpool.Pool, ids id.Generator) *OrderRepository {
	return &OrderRepository{pool: pool, ids: ids}
}

// Create writes the order row and its lines in one transaction.
func (r *OrderRepository) Create(ctx context.Context, c domcustomer.Customer, lines []domain.Line) (*domain.Order, error) {
	order, err := domain.New(r.ids.NewID(), c, lines)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_id, created_at) VALUES ($1, $2, $3)`,
		order.ID, order.Customer.ID, order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, l := range order.Lines {
		batch.Queue(`INSERT INTO order_products (order_id, position, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5::numeric)`,
			order.ID, i, l.ProductID, l.Quantity, l.Price.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("postgres: insert order lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT id, customer_id, created_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Customer.ID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT product_id, quantity, price::text FROM order_products
		WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l     domain.Line
			price string
		)
		if err := rows.Scan(&l.ProductID, &l.Quantity, &price); err != nil {
			return nil, err
		}
		if l.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("postgres: order %s price: %w", id, err)
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, rows.Err()
}
