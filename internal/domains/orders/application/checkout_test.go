package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	uowmemory "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/memory"
)

func checkoutInput(userID, key string) ports.CheckoutInput {
	return ports.CheckoutInput{UserID: userID, Delivery: domain.DeliveryPickUp, IdempotencyKey: key}
}

func TestCheckout_CommitsOrderDebitAndLedger(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)
	require.Equal(t, 3, f.stock(t, 1))

	result, err := f.orders.Checkout(context.Background(), checkoutInput("alice", ""))
	require.NoError(t, err)
	require.False(t, result.Replayed)

	order := result.Order
	require.NotZero(t, order.ID)
	require.Equal(t, domain.StatusProcessing, order.Status)
	require.Equal(t, domain.DeliveryPickUp, order.Delivery)
	require.Equal(t, "60.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 1)
	require.Equal(t, "Lamp", order.Items[0].ProductName)
	require.Equal(t, "30.00", order.Items[0].UnitPrice.StringFixed(2))

	require.Equal(t, walletdomain.TransactionPurchase, result.Transaction.Type)
	require.Equal(t, walletdomain.TransactionCompleted, result.Transaction.Status)
	require.Equal(t, order.ID, *result.Transaction.OrderID)
	require.Equal(t, "60.00", result.Transaction.Amount.StringFixed(2))
	require.Equal(t, "40.00", result.Balance.StringFixed(2))

	require.Equal(t, "40.00", f.balance(t, "alice"))
	require.Equal(t, 3, f.stock(t, 1), "checkout must not decrement stock again")
	require.Len(t, f.ledger(t, "alice"), 2)
	require.Equal(t, 1, f.orderCount(t))

	_, err = f.carts.GetActiveCart(context.Background(), "alice")
	require.ErrorIs(t, err, cartports.ErrNotFound)

	again, err := f.checkout(t, "alice")
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Nil(t, again)
}

func TestCheckout_InsufficientFundsChangesNothing(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "50.00")
	f.addItem(t, "alice", 1, 2)

	_, err := f.checkout(t, "alice")
	require.ErrorIs(t, err, walletdomain.ErrInsufficientFunds)

	cart, err := f.carts.GetActiveCart(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, cart.Active)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 2, cart.Items[0].Quantity)
	require.Equal(t, "50.00", f.balance(t, "alice"))
	require.Len(t, f.ledger(t, "alice"), 1)
	require.Equal(t, 0, f.orderCount(t))
	require.Equal(t, 3, f.stock(t, 1))
}

func TestCheckout_EmptyOrMissingCart(t *testing.T) {
	f := newShopFixture(t)
	f.fund(t, "alice", "10.00")

	_, err := f.checkout(t, "alice")
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = f.carts.EnsureActiveCart(context.Background(), "alice")
	require.NoError(t, err)
	_, err = f.checkout(t, "alice")
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckout_WithoutWalletFails(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.addItem(t, "alice", 1, 1)

	_, err := f.checkout(t, "alice")
	require.ErrorIs(t, err, walletports.ErrNotFound)
	require.Equal(t, 0, f.orderCount(t))
}

func TestCheckout_WithdrawnProductIsReported(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.seedProduct(t, 2, "Mug", "5.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 1)
	f.addItem(t, "alice", 2, 1)
	f.setAvailability(t, 2, false)

	_, err := f.checkout(t, "alice")
	require.ErrorIs(t, err, catalogdomain.ErrProductUnavailable)
	var stockErr *catalogdomain.StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(2), stockErr.ProductID)
	require.Equal(t, "Mug", stockErr.ProductName)

	require.Equal(t, "100.00", f.balance(t, "alice"))
	require.Equal(t, 0, f.orderCount(t))
}

func TestCheckout_SoldOutReservationStillChecksOut(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 2)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)

	order, err := f.checkout(t, "alice")
	require.NoError(t, err)
	require.Equal(t, "60.00", order.TotalAmount.StringFixed(2))
	require.Equal(t, 0, f.stock(t, 1))
}

func TestCheckout_ResyncsStaleTotalWithCurrentPrices(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)
	f.seedProduct(t, 1, "Lamp", "35.00", 3)

	order, err := f.checkout(t, "alice")
	require.NoError(t, err)
	require.Equal(t, "70.00", order.TotalAmount.StringFixed(2))
	require.Equal(t, "30.00", f.balance(t, "alice"))
}

func TestCheckout_StoreFailureRollsEverythingBack(t *testing.T) {
	base := uowmemory.NewStore()
	healthy := newShopFixtureWithStore(t, base)
	healthy.seedProduct(t, 1, "Lamp", "30.00", 5)
	healthy.fund(t, "alice", "100.00")
	healthy.addItem(t, "alice", 1, 2)

	broken := newShopFixtureWithStore(t, faultyStore{Store: base, err: errLedgerDown})
	_, err := broken.orders.Checkout(context.Background(), checkoutInput("alice", "retry-me"))
	require.ErrorIs(t, err, errLedgerDown)

	cart, err := healthy.carts.GetActiveCart(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, cart.Active)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "100.00", healthy.balance(t, "alice"))
	require.Len(t, healthy.ledger(t, "alice"), 1)
	require.Equal(t, 0, healthy.orderCount(t))
	require.Equal(t, 3, healthy.stock(t, 1))

	result, err := healthy.orders.Checkout(context.Background(), checkoutInput("alice", "retry-me"))
	require.NoError(t, err)
	require.False(t, result.Replayed)
}

func TestCheckout_IdempotencyKeyReplaysResult(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)
	ctx := context.Background()

	first, err := f.orders.Checkout(ctx, checkoutInput("alice", "key-1"))
	require.NoError(t, err)

	second, err := f.orders.Checkout(ctx, checkoutInput("alice", "key-1"))
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Order.ID, second.Order.ID)
	require.Equal(t, first.Transaction.ID, second.Transaction.ID)
	require.Equal(t, "40.00", second.Balance.StringFixed(2))
	require.Equal(t, 1, f.orderCount(t))
	require.Len(t, f.ledger(t, "alice"), 2)

	changed := checkoutInput("alice", "key-1")
	changed.Delivery = domain.DeliveryDeliver
	_, err = f.orders.Checkout(ctx, changed)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	_, err = f.orders.Checkout(ctx, checkoutInput("bob", "key-1"))
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestCheckout_ValidatesInput(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()

	_, err := f.orders.Checkout(ctx, ports.CheckoutInput{UserID: "alice", Delivery: "drone"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidDelivery)

	_, err = f.orders.Checkout(ctx, ports.CheckoutInput{UserID: " ", Delivery: domain.DeliveryDeliver})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestErrorTypeRoundTrip(t *testing.T) {
	for _, err := range []error{
		domain.ErrEmptyCart,
		walletdomain.ErrInsufficientFunds,
		&catalogdomain.StockError{ProductID: 3, Err: catalogdomain.ErrInsufficientStock},
		&catalogdomain.StockError{ProductID: 3, Err: catalogdomain.ErrProductUnavailable},
		ports.ErrIdempotencyConflict,
		mapError(domain.ErrInvalidDelivery),
	} {
		kind := ErrorType(err)
		require.NotEmpty(t, kind, err.Error())
		require.Equal(t, kind, ErrorType(ErrorFromType(kind, err.Error())))
	}
	require.Empty(t, ErrorType(errLedgerDown))
}

func TestErrorFromType_DoesNotRepeatSentinelText(t *testing.T) {
	err := ErrorFromType(ErrorTypeInsufficientFunds, "insufficient funds: balance 10.00, order total 60.00")
	require.ErrorIs(t, err, walletdomain.ErrInsufficientFunds)
	require.Equal(t, "insufficient funds: balance 10.00, order total 60.00", err.Error())

	require.Equal(t, walletdomain.ErrInsufficientFunds, ErrorFromType(ErrorTypeInsufficientFunds, ""))
	require.EqualError(t, ErrorFromType("Unknown", "boom"), "boom")
}
