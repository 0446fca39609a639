package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-shop-server/internal/durable/temporal/activities/orders"
)

// RunCheckoutSequence executes the checkout activity with a retry policy suited
// to transient store failures. Business rejections are non-retryable.
func RunCheckoutSequence(ctx workflow.Context, input orderports.CheckoutInput) (*orderports.CheckoutResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("checkout sequence started", "userId", input.UserID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result orderports.CheckoutResult
	err := workflow.ExecuteActivity(ctx, orderactivities.CheckoutActivityName, input).Get(ctx, &result)
	if err != nil {
		logger.Error("checkout sequence failed", "userId", input.UserID, "error", err)
		return nil, err
	}
	if result.Order != nil {
		logger.Info("checkout sequence completed", "orderId", result.Order.ID)
	}
	return &result, nil
}
