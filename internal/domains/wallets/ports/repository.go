package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
)

var (
	ErrNotFound            = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrWalletExists        = errors.New("wallet already exists")
)

// Repository persists wallets, one per user.
type Repository interface {
	// Create inserts a wallet; ErrWalletExists when the user already has one.
	Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
	GetByUser(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserForUpdate(ctx context.Context, userID string) (*domain.Wallet, error)
	// UpdateBalance persists a balance computed under the row lock.
	UpdateBalance(ctx context.Context, wallet *domain.Wallet) error
}

// TransactionRepository is the append-only ledger.
type TransactionRepository interface {
	Append(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error)
	ListByWallet(ctx context.Context, walletID int64) ([]*domain.Transaction, error)
	// FindByOrder returns the first ledger entry of the given type linked to an order.
	FindByOrder(ctx context.Context, orderID int64, kind domain.TransactionType) (*domain.Transaction, error)
}
