package api

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	cartobs "github.com/Apurer/go-gin-shop-server/internal/domains/carts/adapters/observability"
	cartapp "github.com/Apurer/go-gin-shop-server/internal/domains/carts/application"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogobs "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	orderobs "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/go-gin-shop-server/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletobs "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/observability"
	walletapp "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/application"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
	uowmemory "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/memory"
	uowpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/postgres"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

// Services is the decorated application layer shared by the API and the worker.
type Services struct {
	Catalog catalogports.Service
	Carts   cartports.Service
	Orders  orderports.Service
	Wallets walletports.Service
}

// BuildServices wires every bounded context over one store so checkout can
// touch carts, stock, orders and wallets in a single transaction.
func BuildServices(store unitofwork.Store, cfg Config, instruments *platformobservability.Instruments) Services {
	logger := effectiveLogger(instruments)
	admins := authz.StaticAdmins(cfg.AdminUserIDs)
	walletService := walletapp.NewService(store)
	return Services{
		Catalog: catalogobs.New(
			catalogapp.NewService(store, catalogapp.WithRoleChecker(admins)),
			catalogobs.WithLogger(logger),
			catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
			catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
		),
		Carts: cartobs.New(
			cartapp.NewService(store),
			cartobs.WithLogger(logger),
			cartobs.WithTracer(instruments.Tracer("internal.carts.application")),
			cartobs.WithMeter(instruments.Meter("internal.carts.application")),
		),
		Orders: orderobs.New(
			orderapp.NewService(store, walletService.Postings(), orderapp.WithRoleChecker(admins)),
			orderobs.WithLogger(logger),
			orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
			orderobs.WithMeter(instruments.Meter("internal.orders.application")),
		),
		Wallets: walletobs.New(
			walletService,
			walletobs.WithLogger(logger),
			walletobs.WithTracer(instruments.Tracer("internal.wallets.application")),
			walletobs.WithMeter(instruments.Meter("internal.wallets.application")),
		),
	}
}

// OpenStore picks the unit of work. Without POSTGRES_DSN the process keeps its
// state in memory; a configured but unreachable database is an error, never a
// silent fallback.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (unitofwork.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, using the in-memory store")
		store := uowmemory.NewStore()
		if cfg.SeedDemoCatalog {
			if err := seedCatalog(ctx, store, logger); err != nil {
				return nil, func() {}, err
			}
		}
		return store, func() {}, nil
	}
	db, closeDB, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrations.Run(ctx, db); err != nil {
			closeDB()
			return nil, func() {}, err
		}
		logger.Info("database schema migrated")
	}
	store := uowpostgres.NewStore(db, uowpostgres.WithLogger(logger))
	if cfg.SeedDemoCatalog {
		if err := seedCatalog(ctx, store, logger); err != nil {
			closeDB()
			return nil, func() {}, err
		}
		if err := migrations.SyncSequences(ctx, db, "products"); err != nil {
			closeDB()
			return nil, func() {}, err
		}
	}
	return store, closeDB, nil
}

func seedCatalog(ctx context.Context, store unitofwork.Store, logger *slog.Logger) error {
	inserted, err := catalogapp.Seed(ctx, store, catalogapp.DemoProducts())
	if err != nil {
		return fmt.Errorf("seed demo catalogue: %w", err)
	}
	logger.Info("demo catalogue seeded", slog.Int("inserted", inserted))
	return nil
}

// DialTemporal connects the Temporal client with tracing and structured logging.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
