package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	shopserver "github.com/Apurer/go-gin-shop-server/go"
	orderworkflows "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/metrics"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
)

const serviceName = "shop-api"

// Run boots the shop HTTP API with observability, storage and workflows wired,
// and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.SettingsFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	services := BuildServices(store, cfg, instruments)

	var checkoutWorkflows orderports.WorkflowOrchestrator = orderworkflows.NewInlineOrderWorkflows(services.Orders)
	if cfg.TemporalDisabled {
		logger.Info("Temporal disabled, running checkout inline")
	} else if temporalClient, err := DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running checkout inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		checkoutWorkflows = orderworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(cfg, services, checkoutWorkflows, metrics.NewServerMetrics("api", nil))
	srv := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shop API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shop API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shop API shutting down")
	return srv.Shutdown(shutdownCtx)
}

// NewRouter assembles the gin engine: middleware, the metrics endpoint and
// every shop route.
func NewRouter(cfg Config, services Services, workflows orderports.WorkflowOrchestrator, serverMetrics *metrics.ServerMetrics) *gin.Engine {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", shopserver.HeaderUserID, shopserver.HeaderIdempotencyKey},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	if serverMetrics != nil {
		router.Use(serverMetrics.Middleware())
		router.GET("/metrics", gin.WrapH(serverMetrics.Handler()))
	}
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return shopserver.NewRouterWithGinEngine(router, shopserver.ApiHandleFunctions{
		CatalogAPI: shopserver.NewCatalogAPI(services.Catalog),
		CartAPI:    shopserver.NewCartAPI(services.Carts),
		OrderAPI:   shopserver.NewOrderAPI(services.Orders, workflows),
		WalletAPI:  shopserver.NewWalletAPI(services.Wallets),
	})
}
