package ports

import (
	"context"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
)

// Service exposes the catalogue to adapters. Writes are privileged.
type Service interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SaveProduct(ctx context.Context, actorID string, product *domain.Product) (*domain.Product, error)
	SetAvailability(ctx context.Context, actorID string, id int64, available bool) (*domain.Product, error)
	Restock(ctx context.Context, actorID string, id int64, quantity int) (*domain.Product, error)
}
