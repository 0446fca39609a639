package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
)

// Postings applies balance changes together with their ledger rows inside a
// transaction the caller already runs. A balance is never written without the
// transaction row that justifies it.
type Postings struct {
	now func() time.Time
}

// NewPostings builds the postings helper. A nil clock uses time.Now.
func NewPostings(clock func() time.Time) *Postings {
	if clock == nil {
		clock = time.Now
	}
	return &Postings{now: clock}
}

// OpenWallet returns the user's locked wallet, creating an empty one when absent.
func (p *Postings) OpenWallet(ctx context.Context, tx unitofwork.Tx, userID string) (*domain.Wallet, error) {
	wallet, err := tx.Wallets().GetByUserForUpdate(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	fresh, err := domain.NewWallet(userID, p.now())
	if err != nil {
		return nil, err
	}
	if _, err := tx.Wallets().Create(ctx, fresh); err != nil && !errors.Is(err, ports.ErrWalletExists) {
		return nil, err
	}
	return tx.Wallets().GetByUserForUpdate(ctx, userID)
}

// Deposit credits the user's wallet, opening it on first use.
func (p *Postings) Deposit(ctx context.Context, tx unitofwork.Tx, userID string, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, domain.ErrInvalidAmount
	}
	wallet, err := p.OpenWallet(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	txn, err := p.post(ctx, tx, wallet, nil, domain.TransactionDeposit, amount)
	if err != nil {
		return nil, nil, err
	}
	return wallet, txn, nil
}

// Purchase debits a wallet locked by the caller and records the purchase of orderID.
func (p *Postings) Purchase(ctx context.Context, tx unitofwork.Tx, wallet *domain.Wallet, orderID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	return p.post(ctx, tx, wallet, &orderID, domain.TransactionPurchase, amount)
}

// Refund credits the user's wallet for a cancelled order.
func (p *Postings) Refund(ctx context.Context, tx unitofwork.Tx, userID string, orderID int64, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	wallet, err := tx.Wallets().GetByUserForUpdate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	txn, err := p.post(ctx, tx, wallet, &orderID, domain.TransactionRefund, amount)
	if err != nil {
		return nil, nil, err
	}
	return wallet, txn, nil
}

func (p *Postings) post(ctx context.Context, tx unitofwork.Tx, wallet *domain.Wallet, orderID *int64, kind domain.TransactionType, amount decimal.Decimal) (*domain.Transaction, error) {
	if wallet == nil {
		return nil, ports.ErrNotFound
	}
	now := p.now()
	txn, err := domain.NewCompletedTransaction(wallet.ID, orderID, kind, amount, now)
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.TransactionPurchase:
		err = wallet.Debit(txn.Amount, now)
	default:
		err = wallet.Credit(txn.Amount, now)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Wallets().UpdateBalance(ctx, wallet); err != nil {
		return nil, err
	}
	return tx.Transactions().Append(ctx, txn)
}
