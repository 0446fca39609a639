package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	uowmemory "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/memory"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

func TestCancel_RestoresStockAndRefunds(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)
	order, err := f.checkout(t, "alice")
	require.NoError(t, err)

	cancelled, err := f.orders.Cancel(context.Background(), "alice", order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)

	require.Equal(t, 5, f.stock(t, 1))
	require.Equal(t, "100.00", f.balance(t, "alice"))
	ledger := f.ledger(t, "alice")
	require.Len(t, ledger, 3)
	refund := ledger[len(ledger)-1]
	require.Equal(t, walletdomain.TransactionRefund, refund.Type)
	require.Equal(t, "60.00", refund.Amount.StringFixed(2))
	require.Equal(t, order.ID, *refund.OrderID)

	stored, err := f.orders.GetDetails(context.Background(), "alice", order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestCancel_ReenablesSoldOutProduct(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 2)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)
	order, err := f.checkout(t, "alice")
	require.NoError(t, err)

	_, err = f.orders.Cancel(context.Background(), "alice", order.ID)
	require.NoError(t, err)

	f.addItem(t, "bob", 1, 1)
	require.Equal(t, 1, f.stock(t, 1))
}

func TestCancel_TerminalOrdersAreRejected(t *testing.T) {
	for _, status := range []domain.StatusID{domain.StatusCompleted, domain.StatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			f := newShopFixture(t)
			f.seedProduct(t, 1, "Lamp", "30.00", 5)
			f.fund(t, "alice", "100.00")
			f.addItem(t, "alice", 1, 2)
			order, err := f.checkout(t, "alice")
			require.NoError(t, err)
			_, err = f.orders.UpdateStatus(context.Background(), "admin", order.ID, status)
			require.NoError(t, err)

			_, err = f.orders.Cancel(context.Background(), "alice", order.ID)
			require.ErrorIs(t, err, domain.ErrInvalidState)
			require.Equal(t, ErrorTypeInvalidState, ErrorType(err))

			require.Equal(t, 3, f.stock(t, 1))
			require.Equal(t, "40.00", f.balance(t, "alice"))
			require.Len(t, f.ledger(t, "alice"), 2)
		})
	}
}

func TestCancel_ReopenedOrderIsNotRefundedTwice(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 2)
	order, err := f.checkout(t, "alice")
	require.NoError(t, err)
	_, err = f.orders.Cancel(context.Background(), "alice", order.ID)
	require.NoError(t, err)

	reopened, err := f.orders.UpdateStatus(context.Background(), "admin", order.ID, domain.StatusProcessing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, reopened.Status)

	_, err = f.orders.Cancel(context.Background(), "alice", order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	require.Equal(t, ErrorTypeInvalidState, ErrorType(err))

	require.Equal(t, 5, f.stock(t, 1))
	require.Equal(t, "100.00", f.balance(t, "alice"))
	require.Len(t, f.ledger(t, "alice"), 3)
	stored, err := f.orders.GetDetails(context.Background(), "alice", order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, stored.Status)
}

func TestCancel_PendingOrderIsCancellable(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 1)
	order, err := f.checkout(t, "alice")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(context.Background(), "admin", order.ID, domain.StatusPending)
	require.NoError(t, err)

	cancelled, err := f.orders.Cancel(context.Background(), "alice", order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, "100.00", f.balance(t, "alice"))
}

func TestCancel_OtherUsersOrderIsNotFound(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 1)
	order, err := f.checkout(t, "alice")
	require.NoError(t, err)

	_, err = f.orders.Cancel(context.Background(), "mallory", order.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.orders.Cancel(context.Background(), "alice", order.ID+100)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.Equal(t, "70.00", f.balance(t, "alice"))
}

func TestCancel_StoreFailureLeavesOrderLive(t *testing.T) {
	base := uowmemory.NewStore()
	healthy := newShopFixtureWithStore(t, base)
	healthy.seedProduct(t, 1, "Lamp", "30.00", 5)
	healthy.fund(t, "alice", "100.00")
	healthy.addItem(t, "alice", 1, 2)
	order, err := healthy.checkout(t, "alice")
	require.NoError(t, err)

	broken := newShopFixtureWithStore(t, faultyStore{Store: base, err: errLedgerDown})
	_, err = broken.orders.Cancel(context.Background(), "alice", order.ID)
	require.ErrorIs(t, err, errLedgerDown)

	stored, err := healthy.orders.GetDetails(context.Background(), "alice", order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, stored.Status)
	require.Equal(t, 3, healthy.stock(t, 1))
	require.Equal(t, "40.00", healthy.balance(t, "alice"))
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.fund(t, "alice", "100.00")
	f.addItem(t, "alice", 1, 1)
	order, err := f.checkout(t, "alice")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.orders.UpdateStatus(ctx, "alice", order.ID, domain.StatusCompleted)
	require.ErrorIs(t, err, authz.ErrForbidden)

	_, err = f.orders.UpdateStatus(ctx, "admin", order.ID, domain.StatusID(99))
	require.ErrorIs(t, err, domain.ErrStatusNotFound)

	_, err = f.orders.UpdateStatus(ctx, "admin", order.ID+1, domain.StatusCompleted)
	require.ErrorIs(t, err, ports.ErrNotFound)

	updated, err := f.orders.UpdateStatus(ctx, "admin", order.ID, domain.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, updated.Status)
}

func TestDefaultServiceDeniesPrivilegedOperations(t *testing.T) {
	store := uowmemory.NewStore()
	svc := NewService(store, nil)

	_, err := svc.ListAll(context.Background(), "admin")
	require.ErrorIs(t, err, authz.ErrForbidden)
	_, err = svc.UpdateStatus(context.Background(), "admin", 1, domain.StatusCompleted)
	require.ErrorIs(t, err, authz.ErrForbidden)
}

func TestQueries_ListOrdersAndStatuses(t *testing.T) {
	f := newShopFixture(t)
	f.seedProduct(t, 1, "Lamp", "30.00", 5)
	f.seedProduct(t, 2, "Mug", "5.50", 5)
	f.fund(t, "alice", "100.00")
	f.fund(t, "bob", "100.00")
	f.addItem(t, "alice", 1, 1)
	f.addItem(t, "alice", 2, 2)
	_, err := f.checkout(t, "alice")
	require.NoError(t, err)
	f.addItem(t, "bob", 2, 1)
	_, err = f.checkout(t, "bob")
	require.NoError(t, err)
	ctx := context.Background()

	mine, err := f.orders.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 2)
	require.Equal(t, "41.00", mine[0].TotalAmount.StringFixed(2))

	none, err := f.orders.ListForUser(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, none)

	require.Equal(t, 2, f.orderCount(t))

	statuses, err := f.orders.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 4)
	require.Equal(t, "Pending", statuses[0].Name)
}
