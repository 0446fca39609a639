package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
	"github.com/Apurer/go-gin-shop-server/internal/shared/money"
)

// Service implements the wallet ledger use cases.
type Service struct {
	store    unitofwork.Store
	postings *Postings
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source used for ledger timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService wires the wallet ledger over the unit of work.
func NewService(store unitofwork.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.postings = NewPostings(s.now)
	return s
}

// Postings exposes the tx-scoped balance mutations for checkout and cancellation.
func (s *Service) Postings() *Postings {
	return s.postings
}

// EnsureWallet opens the user's wallet if needed. Called alongside user registration.
func (s *Service) EnsureWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		wallet, err = s.postings.OpenWallet(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return wallet, nil
}

// GetBalance returns zero when the user has no wallet.
func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		wallet, err := tx.Wallets().GetByUser(ctx, userID)
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		balance = wallet.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *Service) HasSufficientFunds(ctx context.Context, userID string, amount decimal.Decimal) (bool, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(amount), nil
}

// AddFunds deposits amount, creating the wallet on first use. Amounts finer
// than a cent are rejected rather than rounded.
func (s *Service) AddFunds(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() || !amount.Equal(money.Round(amount)) {
		return nil, mapError(domain.ErrInvalidAmount)
	}
	var txn *domain.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		_, txn, err = s.postings.Deposit(ctx, tx, userID, amount)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return txn, nil
}

// RecordPurchase appends a purchase entry without touching the balance; the
// checkout orchestrator debits under its own transaction.
func (s *Service) RecordPurchase(ctx context.Context, userID string, orderID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		wallet, err := tx.Wallets().GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		entry, err := domain.NewCompletedTransaction(wallet.ID, &orderID, domain.TransactionPurchase, amount, s.now())
		if err != nil {
			return err
		}
		txn, err = tx.Transactions().Append(ctx, entry)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return txn, nil
}

// ListTransactions returns the ledger in storage order; empty when no wallet exists.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	var list []*domain.Transaction
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		wallet, err := tx.Wallets().GetByUser(ctx, userID)
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		list, err = tx.Transactions().ListByWallet(ctx, wallet.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

var _ ports.Service = (*Service)(nil)
