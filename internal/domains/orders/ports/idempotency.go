package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload or user.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// CheckoutKey associates a client-supplied key with the order it produced.
type CheckoutKey struct {
	Key         string
	UserID      string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// CheckoutKeyStore persists checkout idempotency keys inside the checkout transaction.
type CheckoutKeyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*CheckoutKey, error)
	Save(ctx context.Context, record CheckoutKey) (*CheckoutKey, error)
}
