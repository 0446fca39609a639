package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
)

// CheckoutInput is the command accepted by the checkout orchestrator.
type CheckoutInput struct {
	UserID         string
	Delivery       domain.DeliveryOption
	IdempotencyKey string
}

// CheckoutResult reports the effects of a committed checkout.
type CheckoutResult struct {
	Order       *domain.Order
	Transaction *walletdomain.Transaction
	Balance     decimal.Decimal
	// Replayed is set when an idempotency key matched an earlier checkout.
	Replayed bool
}

// Service exposes checkout and the order lifecycle to adapters.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	UpdateStatus(ctx context.Context, actorID string, orderID int64, status domain.StatusID) (*domain.Order, error)
	Cancel(ctx context.Context, userID string, orderID int64) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Order, error)
	GetDetails(ctx context.Context, userID string, orderID int64) (*domain.Order, error)
	ListAll(ctx context.Context, actorID string) ([]*domain.Order, error)
	ListStatuses(ctx context.Context) ([]domain.Status, error)
}

// WorkflowOrchestrator runs checkout either inline or as a durable workflow.
type WorkflowOrchestrator interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}
