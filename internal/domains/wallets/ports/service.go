package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
)

// Service exposes the wallet ledger to adapters.
type Service interface {
	EnsureWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	HasSufficientFunds(ctx context.Context, userID string, amount decimal.Decimal) (bool, error)
	AddFunds(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Transaction, error)
	RecordPurchase(ctx context.Context, userID string, orderID int64, amount decimal.Decimal) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error)
}
