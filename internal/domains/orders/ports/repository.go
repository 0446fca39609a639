package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders together with their frozen line items.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetForUserForUpdate loads an order owned by userID and holds its row lock.
	GetForUserForUpdate(ctx context.Context, userID string, id int64) (*domain.Order, error)
	GetForUser(ctx context.Context, userID string, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.StatusID) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
}
