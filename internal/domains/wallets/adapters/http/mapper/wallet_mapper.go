package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
)

// Balance is the HTTP representation of a wallet balance.
type Balance struct {
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
}

// Transaction is one ledger entry.
type Transaction struct {
	ID        int64     `json:"id"`
	WalletID  int64     `json:"walletId"`
	OrderID   *int64    `json:"orderId,omitempty"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// DepositInput is the add-funds payload.
type DepositInput struct {
	Amount decimal.Decimal `json:"amount"`
}

func FromBalance(userID string, balance decimal.Decimal) Balance {
	return Balance{UserID: userID, Balance: balance.StringFixed(2)}
}

func FromDomainTransaction(t *domain.Transaction) Transaction {
	var orderID *int64
	if t.OrderID != nil {
		id := *t.OrderID
		orderID = &id
	}
	return Transaction{
		ID:        t.ID,
		WalletID:  t.WalletID,
		OrderID:   orderID,
		Type:      t.Type.String(),
		Status:    t.Status.String(),
		Amount:    t.Amount.StringFixed(2),
		CreatedAt: t.CreatedAt,
	}
}

func FromDomainTransactions(list []*domain.Transaction) []Transaction {
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		out = append(out, FromDomainTransaction(t))
	}
	return out
}
