package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// Repository exposes the product rows the checkout core reads and reserves against.
// The ForUpdate variants hold a row lock until the surrounding transaction ends.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	// FindByIDs returns the products that exist; missing ids are absent from the map.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	// FindByIDsForUpdate locks rows in ascending id order.
	FindByIDsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}
