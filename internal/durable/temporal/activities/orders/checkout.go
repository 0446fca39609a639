package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

const (
	// CheckoutActivityName runs one checkout unit of work.
	CheckoutActivityName = "orders.activities.Checkout"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// Checkout converts the cart into an order. The command always carries an
// idempotency key, so a retried attempt replays the committed result instead of
// charging twice.
func (a *Activities) Checkout(ctx context.Context, input orderports.CheckoutInput) (*orderports.CheckoutResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("checkout activity not initialized", "userId", input.UserID)
		return nil, errors.New("checkout activity not initialized")
	}
	logger.Info("Checkout activity started", "userId", input.UserID, "attempt", activity.GetInfo(ctx).Attempt)
	result, err := a.service.Checkout(ctx, input)
	if err != nil {
		logger.Error("Checkout activity failed", "userId", input.UserID, "error", err)
		return nil, AsApplicationError(err)
	}
	logger.Info("Checkout activity completed", "orderId", result.Order.ID, "replayed", result.Replayed)
	return result, nil
}
