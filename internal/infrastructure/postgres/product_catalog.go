package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
)

type ProductCatalog struct {
	pool *pgxpool.Pool
}

func NewProductCatalog(pool *pgxpool.Pool) *ProductCatalog {
	return &ProductCatalog{pool: pool}
}

// FindAllByID returns the known products among ids, in the order they were requested.
func (c *ProductCatalog) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, price::text, quantity FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &price, &p.Quantity); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("postgres: product %s price: %w", p.ID, err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			out = append(out, p)
			delete(found, id)
		}
	}
	return out, nil
}

// UpdateQuantities runs every guarded update in one transaction. Any update whose
// row no longer holds the expected quantity rolls the whole batch back.
func (c *ProductCatalog) UpdateQuantities(ctx context.Context, updates []domain.QuantityUpdate) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE products SET quantity = $2 WHERE id = $1 AND quantity = $3`, u.ID, u.Quantity, u.Expected)
	}
	results := tx.SendBatch(ctx, batch)
	for _, u := range updates {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return fmt.Errorf("postgres: update %s: %w", u.ID, err)
		}
		if tag.RowsAffected() != 1 {
			_ = results.Close()
			return fmt.Errorf("%w: %s", domain.ErrStockConflict, u.ID)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Upsert stores p, replacing price and quantity of an existing product.
func (c *ProductCatalog) Upsert(ctx context.Context, p domain.Product) error {
	_, err := c.pool.Exec(ctx, `INSERT INTO products (id, price, quantity) VALUES ($1, $2::numeric, $3)
		ON CONFLICT (id) DO UPDATE SET price = EXCLUDED.price, quantity = EXCLUDED.quantity`,
		p.ID, p.Price.String(), p.Quantity)
	return err
}
