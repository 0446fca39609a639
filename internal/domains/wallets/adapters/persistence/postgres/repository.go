package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
)

var (
	_ ports.Repository            = (*Repository)(nil)
	_ ports.TransactionRepository = (*Ledger)(nil)
)

// Models lists the records owned by this adapter for schema migration.
func Models() []any {
	return []any{&walletRecord{}, &transactionRecord{}}
}

type walletRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	UserID    string          `gorm:"column:user_id;size:128;not null;uniqueIndex"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null;default:0;check:chk_wallets_balance,balance >= 0"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (walletRecord) TableName() string { return "wallets" }

type transactionRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	WalletID  int64           `gorm:"column:wallet_id;not null;index"`
	OrderID   *int64          `gorm:"column:order_id;index"`
	Type      int16           `gorm:"column:transaction_type;not null"`
	Status    int16           `gorm:"column:transaction_status;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null;check:chk_transactions_amount,amount > 0"`
	CreatedAt time.Time       `gorm:"column:created_at;not null;index"`
}

func (transactionRecord) TableName() string { return "transactions" }

// Repository persists wallets in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the wallet; an existing wallet for the user yields ErrWalletExists
// without aborting the surrounding transaction.
func (r *Repository) Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errors.New("wallet is nil")
	}
	record := walletRecord{UserID: wallet.UserID, Balance: wallet.Balance, CreatedAt: wallet.CreatedAt, UpdatedAt: wallet.UpdatedAt}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrWalletExists
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByUser(ctx context.Context, userID string) (*domain.Wallet, error) {
	return r.get(ctx, r.db, userID)
}

func (r *Repository) GetByUserForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *Repository) UpdateBalance(ctx context.Context, wallet *domain.Wallet) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if wallet == nil {
		return errors.New("wallet is nil")
	}
	result := r.db.WithContext(ctx).Model(&walletRecord{}).Where("id = ?", wallet.ID).Updates(map[string]any{
		"balance":    wallet.Balance,
		"updated_at": wallet.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) get(ctx context.Context, db *gorm.DB, userID string) (*domain.Wallet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record walletRecord
	if err := db.WithContext(ctx).First(&record, "user_id = ?", strings.TrimSpace(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres wallet repository not configured")
	}
	return nil
}

func (r walletRecord) toDomain() *domain.Wallet {
	return &domain.Wallet{ID: r.ID, UserID: r.UserID, Balance: r.Balance, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Ledger appends and reads transaction rows.
type Ledger struct {
	db *gorm.DB
}

// NewLedger wires the PostgreSQL transaction ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Append(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errors.New("transaction is nil")
	}
	record := toTransactionRecord(txn)
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *Ledger) ListByWallet(ctx context.Context, walletID int64) ([]*domain.Transaction, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var records []transactionRecord
	if err := l.db.WithContext(ctx).Where("wallet_id = ?", walletID).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Transaction, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (l *Ledger) FindByOrder(ctx context.Context, orderID int64, kind domain.TransactionType) (*domain.Transaction, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var record transactionRecord
	err := l.db.WithContext(ctx).
		Where("order_id = ? AND transaction_type = ?", orderID, int16(kind)).
		Order("id").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrTransactionNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres transaction ledger not configured")
	}
	return nil
}

func toTransactionRecord(txn *domain.Transaction) transactionRecord {
	return transactionRecord{
		ID:        txn.ID,
		WalletID:  txn.WalletID,
		OrderID:   txn.OrderID,
		Type:      int16(txn.Type),
		Status:    int16(txn.Status),
		Amount:    txn.Amount,
		CreatedAt: txn.CreatedAt,
	}
}

func (r transactionRecord) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:        r.ID,
		WalletID:  r.WalletID,
		OrderID:   r.OrderID,
		Type:      domain.TransactionType(r.Type),
		Status:    domain.TransactionStatus(r.Status),
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt,
	}
}
