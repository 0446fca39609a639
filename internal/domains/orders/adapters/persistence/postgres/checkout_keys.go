package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

var _ ports.CheckoutKeyStore = (*CheckoutKeyStore)(nil)

type checkoutKeyRecord struct {
	Key         string    `gorm:"primaryKey;column:idempotency_key;size:255"`
	UserID      string    `gorm:"column:user_id;size:128;not null"`
	RequestHash string    `gorm:"column:request_hash;size:64;not null"`
	OrderID     int64     `gorm:"column:order_id;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (checkoutKeyRecord) TableName() string { return "checkout_idempotency_keys" }

// CheckoutKeyStore persists idempotency keys in the checkout transaction.
type CheckoutKeyStore struct {
	db *gorm.DB
}

// NewCheckoutKeyStore wires the PostgreSQL idempotency store.
func NewCheckoutKeyStore(db *gorm.DB) *CheckoutKeyStore {
	return &CheckoutKeyStore{db: db}
}

func (s *CheckoutKeyStore) Get(ctx context.Context, key string) (*ports.CheckoutKey, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record checkoutKeyRecord
	err := s.db.WithContext(ctx).First(&record, "idempotency_key = ?", strings.TrimSpace(key)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Save inserts the key; a conflicting earlier record yields ErrIdempotencyConflict.
func (s *CheckoutKeyStore) Save(ctx context.Context, key ports.CheckoutKey) (*ports.CheckoutKey, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	record := checkoutKeyRecord{
		Key:         strings.TrimSpace(key.Key),
		UserID:      key.UserID,
		RequestHash: key.RequestHash,
		OrderID:     key.OrderID,
		CreatedAt:   key.CreatedAt,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "idempotency_key"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return record.toPort(), nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ports.ErrIdempotencyConflict
	}
	if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID || existing.UserID != record.UserID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (s *CheckoutKeyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres checkout key store not configured")
	}
	return nil
}

func (r checkoutKeyRecord) toPort() *ports.CheckoutKey {
	return &ports.CheckoutKey{
		Key:         r.Key,
		UserID:      r.UserID,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
	}
}
