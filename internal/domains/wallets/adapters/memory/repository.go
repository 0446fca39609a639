package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
)

var (
	_ ports.Repository            = (*Repository)(nil)
	_ ports.TransactionRepository = (*Ledger)(nil)
)

// Repository is an in-memory wallet adapter. Access is serialised by the memory unit of work.
type Repository struct {
	wallets map[int64]*domain.Wallet
	nextID  int64
}

func NewRepository() *Repository {
	return &Repository{wallets: map[int64]*domain.Wallet{}}
}

// Clone copies the repository state for a transaction.
func (r *Repository) Clone() *Repository {
	clone := &Repository{wallets: make(map[int64]*domain.Wallet, len(r.wallets)), nextID: r.nextID}
	for id, w := range r.wallets {
		copied := *w
		clone.wallets[id] = &copied
	}
	return clone
}

func (r *Repository) Create(_ context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	if wallet == nil {
		return nil, errors.New("wallet is nil")
	}
	for _, existing := range r.wallets {
		if existing.UserID == wallet.UserID {
			return nil, ports.ErrWalletExists
		}
	}
	copied := *wallet
	r.nextID++
	copied.ID = r.nextID
	r.wallets[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (r *Repository) GetByUser(_ context.Context, userID string) (*domain.Wallet, error) {
	userID = strings.TrimSpace(userID)
	for _, w := range r.wallets {
		if w.UserID == userID {
			copied := *w
			return &copied, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) GetByUserForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	return r.GetByUser(ctx, userID)
}

func (r *Repository) UpdateBalance(_ context.Context, wallet *domain.Wallet) error {
	if wallet == nil {
		return errors.New("wallet is nil")
	}
	stored, ok := r.wallets[wallet.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if wallet.Balance.IsNegative() {
		return domain.ErrInsufficientFunds
	}
	stored.Balance = wallet.Balance
	stored.UpdatedAt = wallet.UpdatedAt
	return nil
}

// Ledger is the in-memory append-only transaction log.
type Ledger struct {
	entries []*domain.Transaction
	nextID  int64
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Clone copies the ledger for a transaction. Entries are immutable once appended.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{entries: append([]*domain.Transaction(nil), l.entries...), nextID: l.nextID}
}

func (l *Ledger) Append(_ context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	if txn == nil {
		return nil, errors.New("transaction is nil")
	}
	if !txn.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	copied := *txn
	l.nextID++
	copied.ID = l.nextID
	l.entries = append(l.entries, &copied)
	result := copied
	return &result, nil
}

func (l *Ledger) ListByWallet(_ context.Context, walletID int64) ([]*domain.Transaction, error) {
	var list []*domain.Transaction
	for _, entry := range l.entries {
		if entry.WalletID == walletID {
			copied := *entry
			list = append(list, &copied)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (l *Ledger) FindByOrder(_ context.Context, orderID int64, kind domain.TransactionType) (*domain.Transaction, error) {
	for _, entry := range l.entries {
		if entry.OrderID != nil && *entry.OrderID == orderID && entry.Type == kind {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, ports.ErrTransactionNotFound
}
