package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, stock int) *Product {
	t.Helper()
	p, err := NewProduct(1, "Lamp", decimal.RequireFromString("30.00"), stock)
	require.NoError(t, err)
	return p
}

func TestReserve_DepletesAndDisables(t *testing.T) {
	p := newTestProduct(t, 2)

	require.NoError(t, p.Reserve(2))
	require.Equal(t, 0, p.Stock)
	require.False(t, p.Available)
	require.True(t, p.Depleted)

	err := p.Reserve(1)
	require.ErrorIs(t, err, ErrProductUnavailable)
}

func TestReserve_InsufficientStockLeavesProductUntouched(t *testing.T) {
	p := newTestProduct(t, 5)

	err := p.Reserve(10)
	require.ErrorIs(t, err, ErrInsufficientStock)
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(1), stockErr.ProductID)
	require.Equal(t, 10, stockErr.Requested)
	require.Equal(t, 5, stockErr.Available)
	require.Equal(t, 5, p.Stock)
	require.True(t, p.Available)
}

func TestRelease_ReenablesOnlyDepletedProducts(t *testing.T) {
	p := newTestProduct(t, 1)
	require.NoError(t, p.Reserve(1))
	p.Release(1)
	require.True(t, p.Available)
	require.False(t, p.Depleted)

	p.SetAvailability(false)
	p.Release(3)
	require.Equal(t, 4, p.Stock)
	require.False(t, p.Available)
}

func TestReservationHolds(t *testing.T) {
	p := newTestProduct(t, 2)
	require.NoError(t, p.Reserve(2))
	require.NoError(t, p.ReservationHolds(2))

	p.SetAvailability(false)
	require.ErrorIs(t, p.ReservationHolds(2), ErrProductUnavailable)
}

func TestNewProduct_Validates(t *testing.T) {
	_, err := NewProduct(1, " ", decimal.NewFromInt(1), 1)
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = NewProduct(1, "Lamp", decimal.NewFromInt(-1), 1)
	require.ErrorIs(t, err, ErrNegativePrice)
	_, err = NewProduct(1, "Lamp", decimal.NewFromInt(1), -1)
	require.ErrorIs(t, err, ErrNegativeStock)
}
