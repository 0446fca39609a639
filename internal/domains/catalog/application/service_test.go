package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	uowmemory "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/memory"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

func newCatalog(t *testing.T) *Service {
	t.Helper()
	store := uowmemory.NewStore()
	n, err := Seed(context.Background(), store, DemoProducts())
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return NewService(store, WithRoleChecker(authz.StaticAdmins([]string{"admin"})))
}

func TestSeed_IsIdempotent(t *testing.T) {
	store := uowmemory.NewStore()
	ctx := context.Background()
	_, err := Seed(ctx, store, DemoProducts())
	require.NoError(t, err)

	svc := NewService(store, WithRoleChecker(authz.AllowAll))
	_, err = svc.Restock(ctx, "admin", 1, 10)
	require.NoError(t, err)

	n, err := Seed(ctx, store, DemoProducts())
	require.NoError(t, err)
	require.Zero(t, n)
	lamp, err := svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 15, lamp.Stock)
}

func TestListAndGetProducts(t *testing.T) {
	svc := newCatalog(t)
	ctx := context.Background()

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)
	require.Equal(t, "Desk Lamp", products[0].Name)

	_, err = svc.GetProduct(ctx, 99)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSaveProduct_KeepsStockOfExistingProduct(t *testing.T) {
	svc := newCatalog(t)
	ctx := context.Background()

	updated, err := svc.SaveProduct(ctx, "admin", &domain.Product{ID: 1, Name: "Desk Lamp XL", Price: decimal.RequireFromString("35"), Stock: 100})
	require.NoError(t, err)
	require.Equal(t, "Desk Lamp XL", updated.Name)
	require.Equal(t, "35.00", updated.Price.StringFixed(2))
	require.Equal(t, 5, updated.Stock)

	created, err := svc.SaveProduct(ctx, "admin", &domain.Product{Name: "Pen", Price: decimal.RequireFromString("1.20"), Stock: 10})
	require.NoError(t, err)
	require.Equal(t, int64(5), created.ID)
	require.True(t, created.Available)
}

func TestSaveProduct_Validation(t *testing.T) {
	svc := newCatalog(t)
	ctx := context.Background()

	_, err := svc.SaveProduct(ctx, "admin", &domain.Product{Name: " ", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyName)

	_, err = svc.SaveProduct(ctx, "admin", &domain.Product{Name: "Pen", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, domain.ErrNegativePrice)

	_, err = svc.SaveProduct(ctx, "bob", &domain.Product{Name: "Pen", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, authz.ErrForbidden)
}

func TestSetAvailabilityAndRestock(t *testing.T) {
	svc := newCatalog(t)
	ctx := context.Background()

	withdrawn, err := svc.SetAvailability(ctx, "admin", 2, false)
	require.NoError(t, err)
	require.False(t, withdrawn.Available)

	restocked, err := svc.Restock(ctx, "admin", 2, 5)
	require.NoError(t, err)
	require.Equal(t, 25, restocked.Stock)
	require.False(t, restocked.Available, "restock must not undo a manual withdrawal")

	_, err = svc.Restock(ctx, "admin", 2, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetAvailability(ctx, "admin", 42, true)
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.Restock(ctx, "bob", 2, 1)
	require.ErrorIs(t, err, authz.ErrForbidden)
}
