package memory

import (
	"context"
	"strings"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

var _ ports.CheckoutKeyStore = (*CheckoutKeyStore)(nil)

// CheckoutKeyStore keeps checkout idempotency keys in memory.
type CheckoutKeyStore struct {
	records map[string]ports.CheckoutKey
}

// NewCheckoutKeyStore constructs an empty idempotency store.
func NewCheckoutKeyStore() *CheckoutKeyStore {
	return &CheckoutKeyStore{records: map[string]ports.CheckoutKey{}}
}

// Clone copies the store for a transaction.
func (s *CheckoutKeyStore) Clone() *CheckoutKeyStore {
	clone := &CheckoutKeyStore{records: make(map[string]ports.CheckoutKey, len(s.records))}
	for k, v := range s.records {
		clone.records[k] = v
	}
	return clone
}

// Get returns the stored record, or nil when the key is unknown.
func (s *CheckoutKeyStore) Get(_ context.Context, key string) (*ports.CheckoutKey, error) {
	rec, ok := s.records[strings.TrimSpace(key)]
	if !ok {
		return nil, nil
	}
	copied := rec
	return &copied, nil
}

// Save stores the first record for a key; later saves must match it.
func (s *CheckoutKeyStore) Save(_ context.Context, record ports.CheckoutKey) (*ports.CheckoutKey, error) {
	record.Key = strings.TrimSpace(record.Key)
	if existing, ok := s.records[record.Key]; ok {
		copied := existing
		if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID || existing.UserID != record.UserID {
			return &copied, ports.ErrIdempotencyConflict
		}
		return &copied, nil
	}
	s.records[record.Key] = record
	copied := record
	return &copied, nil
}
