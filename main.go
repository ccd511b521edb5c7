package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/config"
	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domproduct "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	orderworker "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/order/worker"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	httppresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("config_load_failed", zap.Error(err))
	}

	logger := zaplogger.MustNew(cfg.LogFile,
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger.Zap())

	counters, histograms := prometrics.Standard(prometrics.New(nil, "", ""))
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	customers, catalog, orders, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		logger.Error("store_open_failed", observability.F("store", cfg.Store), observability.F("error", err))
		os.Exit(1)
	}
	defer closeStore()

	bus := outbox.NewBus(logger)
	orderworker.New(bus, tel).Start()
	bus.Start(ctx)

	accept := appOrder.NewAcceptOrderUseCase(customers, catalog, orders, bus, tel)
	handler := httppresentation.NewHandler(accept, tel)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("store", cfg.Store),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err))
	} else {
		logger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config) (
	appOrder.CustomerLookup,
	appOrder.ProductCatalog,
	appOrder.OrderStore,
	func(),
	error,
) {
	ids := id.NewUUIDGenerator()

	if cfg.Store == config.StorePostgres {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
		return postgres.NewCustomerRepository(pool),
			postgres.NewProductCatalog(pool),
			postgres.NewOrderRepository(pool, ids),
			pool.Close,
			nil
	}

	customers := memory.NewCustomerRepository(
		domcustomer.Customer{ID: "C1"},
		domcustomer.Customer{ID: "C2"},
	)
	catalog := memory.NewProductCatalog(demoCatalog()...)
	return customers, catalog, memory.NewOrderRepository(ids), func() {}, nil
}

func demoCatalog() []domproduct.Product {
	seed := []struct {
		id    string
		price string
		qty   int
	}{
		{"P1", "10.00", 5},
		{"P2", "4.50", 20},
		{"P3", "99.99", 1},
	}

	out := make([]domproduct.Product, 0, len(seed))
	for _, s := range seed {
		p, err := domproduct.New(s.id, decimal.RequireFromString(s.price), s.qty)
		if err != nil {
			panic(err)
		}
		out = append(out, *p)
	}
	return out
}
