package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	orderactivities "github.com/Apurer/go-gin-shop-server/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-shop-server/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/go-gin-shop-server/internal/platform/observability"
)

// RunWorker hosts the checkout workflow and its activity on the checkout task
// queue until interrupted.
func RunWorker(ctx context.Context) error {
	const workerServiceName = "shop-worker"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.SettingsFromEnv(workerServiceName))
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
	if cfg.PostgresDSN == "" {
		logger.Warn("worker uses a private in-memory store; orders it places are invisible to the API process")
	}
	services := BuildServices(store, cfg, instruments)

	temporalClient, err := DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	activities := orderactivities.NewActivities(services.Orders)
	w := worker.New(temporalClient, orderworkflows.CheckoutTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.CheckoutWorkflow, workflow.RegisterOptions{Name: orderworkflows.CheckoutWorkflowName})
	w.RegisterActivityWithOptions(activities.Checkout, activity.RegisterOptions{Name: orderactivities.CheckoutActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.CheckoutTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	stop := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	if err := w.Run(stop); err != nil {
		return fmt.Errorf("temporal worker exited: %w", err)
	}
	logger.Info("Temporal worker stopped")
	return nil
}
