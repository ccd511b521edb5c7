package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	price    NUMERIC(14, 2) NOT NULL CHECK (price >= 0),
	quantity INTEGER NOT NULL CHECK (quantity >= 0)
);

CREATE TABLE IF NOT EXISTS orders (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES customers (id),
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_products (
	order_id   TEXT NOT NULL REFERENCES orders (id),
	position   INTEGER NOT NULL,
	product_id TEXT NOT NULL REFERENCES products (id),
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	price      NUMERIC(14, 2) NOT NULL,
	PRIMARY KEY (order_id, position)
);
`

// Open connects a pool and verifies the database answers.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// Migrate creates the tables used by the stores. It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
