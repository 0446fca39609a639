package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	cartapp "github.com/Apurer/go-gin-shop-server/internal/domains/carts/application"
	cartdomain "github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	walletapp "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/application"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
	uowmemory "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/memory"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

type shopFixture struct {
	store   unitofwork.Store
	carts   *cartapp.Service
	wallets *walletapp.Service
	orders  *Service
}

func newShopFixture(t *testing.T, opts ...Option) *shopFixture {
	t.Helper()
	return newShopFixtureWithStore(t, uowmemory.NewStore(), opts...)
}

func newShopFixtureWithStore(t *testing.T, store unitofwork.Store, opts ...Option) *shopFixture {
	t.Helper()
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	wallets := walletapp.NewService(store, walletapp.WithClock(tick))
	opts = append([]Option{WithClock(tick), WithRoleChecker(authz.StaticAdmins([]string{"admin"}))}, opts...)
	return &shopFixture{
		store:   store,
		carts:   cartapp.NewService(store, cartapp.WithClock(tick)),
		wallets: wallets,
		orders:  NewService(store, wallets.Postings(), opts...),
	}
}

func (f *shopFixture) seedProduct(t *testing.T, id int64, name, price string, stock int) {
	t.Helper()
	product, err := catalogdomain.NewProduct(id, name, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx unitofwork.Tx) error {
		_, err := tx.Products().Save(ctx, product)
		return err
	}))
}

func (f *shopFixture) fund(t *testing.T, userID, amount string) {
	t.Helper()
	_, err := f.wallets.AddFunds(context.Background(), userID, decimal.RequireFromString(amount))
	require.NoError(t, err)
}

func (f *shopFixture) addItem(t *testing.T, userID string, productID int64, qty int) *cartdomain.Item {
	t.Helper()
	item, err := f.carts.AddItem(context.Background(), userID, productID, qty)
	require.NoError(t, err)
	return item
}

func (f *shopFixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	var stock int
	require.NoError(t, f.store.View(context.Background(), func(ctx context.Context, tx unitofwork.Tx) error {
		p, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		stock = p.Stock
		return nil
	}))
	return stock
}

func (f *shopFixture) balance(t *testing.T, userID string) string {
	t.Helper()
	balance, err := f.wallets.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return balance.StringFixed(2)
}

func (f *shopFixture) ledger(t *testing.T, userID string) []*walletdomain.Transaction {
	t.Helper()
	list, err := f.wallets.ListTransactions(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func (f *shopFixture) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := f.orders.ListAll(context.Background(), "admin")
	require.NoError(t, err)
	return len(orders)
}

func (f *shopFixture) setAvailability(t *testing.T, productID int64, available bool) {
	t.Helper()
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx unitofwork.Tx) error {
		p, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		p.SetAvailability(available)
		_, err = tx.Products().Save(ctx, p)
		return err
	}))
}

func (f *shopFixture) checkout(t *testing.T, userID string) (*domain.Order, error) {
	t.Helper()
	result, err := f.orders.Checkout(context.Background(), checkoutInput(userID, ""))
	if err != nil {
		return nil, err
	}
	return result.Order, nil
}

// faultyStore fails every ledger append, standing in for a store failure in the
// middle of a multi-step write.
type faultyStore struct {
	unitofwork.Store
	err error
}

func (s faultyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx unitofwork.Tx) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		return fn(ctx, faultyTx{Tx: tx, err: s.err})
	})
}

type faultyTx struct {
	unitofwork.Tx
	err error
}

func (t faultyTx) Transactions() walletports.TransactionRepository {
	return failingLedger{TransactionRepository: t.Tx.Transactions(), err: t.err}
}

type failingLedger struct {
	walletports.TransactionRepository
	err error
}

func (l failingLedger) Append(context.Context, *walletdomain.Transaction) (*walletdomain.Transaction, error) {
	return nil, l.err
}

var errLedgerDown = errors.New("ledger unavailable")
