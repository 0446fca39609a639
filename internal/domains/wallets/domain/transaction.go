package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/shared/money"
)

// TransactionType implies the direction of a ledger entry.
type TransactionType int

const (
	TransactionDeposit  TransactionType = 1
	TransactionPurchase TransactionType = 2
	TransactionRefund   TransactionType = 3
)

func (t TransactionType) String() string {
	switch t {
	case TransactionDeposit:
		return "Deposit"
	case TransactionPurchase:
		return "Purchase"
	case TransactionRefund:
		return "Refund"
	default:
		return "Unknown"
	}
}

// TransactionStatus tracks settlement of a ledger entry.
type TransactionStatus int

const (
	TransactionPending   TransactionStatus = 1
	TransactionCompleted TransactionStatus = 2
	TransactionFailed    TransactionStatus = 3
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionPending:
		return "Pending"
	case TransactionCompleted:
		return "Completed"
	case TransactionFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Transaction is an append-only ledger row. Amount is always positive.
type Transaction struct {
	ID        int64
	WalletID  int64
	OrderID   *int64
	Type      TransactionType
	Status    TransactionStatus
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// NewCompletedTransaction builds a settled ledger entry.
func NewCompletedTransaction(walletID int64, orderID *int64, kind TransactionType, amount decimal.Decimal, now time.Time) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var order *int64
	if orderID != nil {
		id := *orderID
		order = &id
	}
	return &Transaction{
		WalletID:  walletID,
		OrderID:   order,
		Type:      kind,
		Status:    TransactionCompleted,
		Amount:    money.Round(amount),
		CreatedAt: now,
	}, nil
}
