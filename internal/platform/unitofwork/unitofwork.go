// Package unitofwork scopes the catalog, cart, order and wallet repositories to a single
// atomic transaction.
package unitofwork

import (
	"context"

	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
)

// Tx exposes repositories bound to one transaction. Values must not escape the callback.
type Tx interface {
	Products() catalogports.Repository
	Carts() cartports.Repository
	Orders() orderports.Repository
	CheckoutKeys() orderports.CheckoutKeyStore
	Wallets() walletports.Repository
	Transactions() walletports.TransactionRepository
}

// Store runs callbacks atomically. Returning an error from fn rolls every write back.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
