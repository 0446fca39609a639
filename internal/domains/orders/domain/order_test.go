package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_StartsProcessing(t *testing.T) {
	items := []LineItem{{ProductID: 1, ProductName: "Lamp", UnitPrice: decimal.RequireFromString("30"), Quantity: 2}}
	order, err := NewOrder(4, "alice", decimal.RequireFromString("60"), DeliveryPickUp, items, time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, order.Status)
	require.Equal(t, "60.00", order.Items[0].Total().StringFixed(2))

	_, err = NewOrder(4, "alice", decimal.Zero, DeliveryOption("drone"), items, time.Now())
	require.ErrorIs(t, err, ErrInvalidDelivery)
	_, err = NewOrder(4, "alice", decimal.Zero, DeliveryDeliver, nil, time.Now())
	require.ErrorIs(t, err, ErrEmptyCart)
	_, err = NewOrder(4, "alice", decimal.Zero, DeliveryDeliver, items, time.Now())
	require.ErrorIs(t, err, ErrNothingToPay)
}

func TestOrder_ProductIDsSortedAndDistinct(t *testing.T) {
	order := &Order{Items: []LineItem{{ProductID: 9}, {ProductID: 2}, {ProductID: 9}}}
	require.Equal(t, []int64{2, 9}, order.ProductIDs())
}

func TestOrder_CancelRejectsTerminalStates(t *testing.T) {
	for _, status := range []StatusID{StatusCompleted, StatusCancelled} {
		order := &Order{Status: status}
		require.ErrorIs(t, order.Cancel(), ErrInvalidState)
		require.Equal(t, status, order.Status)
	}
	for _, status := range []StatusID{StatusPending, StatusProcessing} {
		order := &Order{Status: status}
		require.NoError(t, order.Cancel())
		require.Equal(t, StatusCancelled, order.Status)
	}
}

func TestParseDeliveryOption(t *testing.T) {
	option, err := ParseDeliveryOption("PickUp")
	require.NoError(t, err)
	require.Equal(t, DeliveryPickUp, option)
	option, err = ParseDeliveryOption("deliver")
	require.NoError(t, err)
	require.Equal(t, DeliveryDeliver, option)
	_, err = ParseDeliveryOption("teleport")
	require.ErrorIs(t, err, ErrInvalidDelivery)
}

func TestLookupStatus(t *testing.T) {
	status, ok := LookupStatus(StatusCompleted)
	require.True(t, ok)
	require.Equal(t, "Completed", status.Name)
	_, ok = LookupStatus(StatusID(0))
	require.False(t, ok)
	require.Len(t, Statuses(), 4)
}
