package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
)

var (
	ErrNotFound     = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
)

// Repository persists carts and their lines. Loaded carts carry their items
// without resolved products.
type Repository interface {
	// CreateActive returns the user's active cart, inserting an empty one when absent.
	// Concurrent callers converge on the same row.
	CreateActive(ctx context.Context, userID string, now time.Time) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetActiveByUserForUpdate(ctx context.Context, userID string) (*domain.Cart, error)
	// Save persists the header columns: active flag, cached total and updated_at.
	Save(ctx context.Context, cart *domain.Cart) error
	GetItem(ctx context.Context, itemID int64) (*domain.Item, error)
	SaveItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, itemID int64) error
	DeleteItems(ctx context.Context, cartID int64) error
}
