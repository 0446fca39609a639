package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
)

// Service exposes the cart engine to adapters.
type Service interface {
	GetActiveCart(ctx context.Context, userID string) (*domain.Cart, error)
	EnsureActiveCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (*domain.Item, error)
	UpdateItemQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*domain.Item, error)
	RemoveItem(ctx context.Context, userID string, itemID int64) (bool, error)
	ClearCart(ctx context.Context, userID string) (bool, error)
	TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error)
}
