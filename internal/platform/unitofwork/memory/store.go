package memory

import (
	"context"
	"sync"

	cartmemory "github.com/Apurer/go-gin-shop-server/internal/domains/carts/adapters/memory"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogmemory "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/adapters/memory"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	ordermemory "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/memory"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletmemory "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/memory"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
)

var _ unitofwork.Store = (*Store)(nil)

// Store serialises transactions behind one mutex. Each transaction works on cloned
// repositories which replace the committed state only when fn succeeds.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	products     *catalogmemory.Repository
	carts        *cartmemory.Repository
	orders       *ordermemory.Repository
	checkoutKeys *ordermemory.CheckoutKeyStore
	wallets      *walletmemory.Repository
	transactions *walletmemory.Ledger
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{state: &state{
		products:     catalogmemory.NewRepository(),
		carts:        cartmemory.NewRepository(),
		orders:       ordermemory.NewRepository(),
		checkoutKeys: ordermemory.NewCheckoutKeyStore(),
		wallets:      walletmemory.NewRepository(),
		transactions: walletmemory.NewLedger(),
	}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx unitofwork.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.state.clone()
	if err := fn(ctx, working); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx unitofwork.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	// Readers still get a copy so writes inside a view never leak.
	return fn(ctx, s.state.clone())
}

func (st *state) clone() *state {
	return &state{
		products:     st.products.Clone(),
		carts:        st.carts.Clone(),
		orders:       st.orders.Clone(),
		checkoutKeys: st.checkoutKeys.Clone(),
		wallets:      st.wallets.Clone(),
		transactions: st.transactions.Clone(),
	}
}

func (st *state) Products() catalogports.Repository               { return st.products }
func (st *state) Carts() cartports.Repository                     { return st.carts }
func (st *state) Orders() orderports.Repository                   { return st.orders }
func (st *state) CheckoutKeys() orderports.CheckoutKeyStore       { return st.checkoutKeys }
func (st *state) Wallets() walletports.Repository                 { return st.wallets }
func (st *state) Transactions() walletports.TransactionRepository { return st.transactions }
