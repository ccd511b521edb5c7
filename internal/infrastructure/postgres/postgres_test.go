package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/postgres"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	require.NoError(t, postgres.Migrate(ctx, pool), "migrations must be re-runnable")
	return pool
}

func TestPostgresStores(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	customers := postgres.NewCustomerRepository(pool)
	catalog := postgres.NewProductCatalog(pool)
	orders := postgres.NewOrderRepository(pool, id.NewUUIDGenerator())

	require.NoError(t, customers.Insert(ctx, domcustomer.Customer{ID: "C1"}))
	require.NoError(t, catalog.Upsert(ctx, domproduct.Product{ID: "P1", Price: decimal.RequireFromString("10.00"), Quantity: 5}))
	require.NoError(t, catalog.Upsert(ctx, domproduct.Product{ID: "P2", Price: decimal.RequireFromString("2.50"), Quantity: 1}))

	t.Run("customer lookup", func(t *testing.T) {
		c, err := customers.FindByID(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, "C1", c.ID)

		_, err = customers.FindByID(ctx, "nobody")
		assert.ErrorIs(t, err, domcustomer.ErrNotFound)
	})

	t.Run("find all by id keeps request order and omits unknown", func(t *testing.T) {
		got, err := catalog.FindAllByID(ctx, []string{"P2", "P404", "P1"})
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, "P2", got[0].ID)
		assert.True(t, decimal.RequireFromString("2.50").Equal(got[0].Price))
		assert.Equal(t, "P1", got[1].ID)
		assert.Equal(t, 5, got[1].Quantity)
	})

	t.Run("guarded update rolls back the whole batch", func(t *testing.T) {
		err := catalog.UpdateQuantities(ctx, []domproduct.QuantityUpdate{
			{ID: "P1", Quantity: 4, Expected: 5},
			{ID: "P2", Quantity: 0, Expected: 7},
		})
		assert.ErrorIs(t, err, domproduct.ErrStockConflict)

		got, err := catalog.FindAllByID(ctx, []string{"P1", "P2"})
		require.NoError(t, err)
		assert.Equal(t, 5, got[0].Quantity)
		assert.Equal(t, 1, got[1].Quantity)
	})

	t.Run("order round trip", func(t *testing.T) {
		created, err := orders.Create(ctx, domcustomer.Customer{ID: "C1"}, []domorder.Line{
			{ProductID: "P1", Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ProductID: "P2", Quantity: 1, Price: decimal.RequireFromString("2.50")},
		})
		require.NoError(t, err)

		stored, err := orders.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "C1", stored.Customer.ID)
		require.Len(t, stored.Lines, 2)
		assert.Equal(t, "P1", stored.Lines[0].ProductID)
		assert.True(t, decimal.RequireFromString("22.50").Equal(stored.Total()))
		assert.WithinDuration(t, created.CreatedAt, stored.CreatedAt, time.Millisecond)
	})

	t.Run("accept order end to end", func(t *testing.T) {
		uc := appOrder.NewAcceptOrderUseCase(customers, catalog, orders, nil, nil)

		got, err := uc.Execute(ctx, appOrder.AcceptOrderInput{
			CustomerID: "C1",
			Lines:      []domorder.LineRequest{{ProductID: "P1", Quantity: 3}},
		})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10.00").Equal(got.Lines[0].Price))

		products, err := catalog.FindAllByID(ctx, []string{"P1"})
		require.NoError(t, err)
		assert.Equal(t, 2, products[0].Quantity)

		_, err = uc.Execute(ctx, appOrder.AcceptOrderInput{
			CustomerID: "C1",
			Lines:      []domorder.LineRequest{{ProductID: "P1", Quantity: 5}},
		})
		assert.ErrorIs(t, err, appOrder.ErrInsufficientStock)
	})
}
