package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/shared/money"
)

var (
	ErrEmptyUserID       = errors.New("user id is required")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Wallet holds the spendable balance of one user.
type Wallet struct {
	ID        int64
	UserID    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWallet opens an empty wallet.
func NewWallet(userID string, now time.Time) (*Wallet, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return &Wallet{UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}, nil
}

// Covers reports whether the balance can pay amount.
func (w *Wallet) Covers(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// Credit adds a positive amount.
func (w *Wallet) Credit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	w.Balance = money.Round(w.Balance.Add(amount))
	w.UpdatedAt = now
	return nil
}

// Debit removes a positive amount; the balance never goes negative.
func (w *Wallet) Debit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !w.Covers(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = money.Round(w.Balance.Sub(amount))
	w.UpdatedAt = now
	return nil
}
