package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

type normalizedCheckoutInput struct {
	UserID   string `json:"userId"`
	Delivery string `json:"delivery"`
}

// FingerprintCheckout builds a deterministic hash of the checkout request (excluding the idempotency key).
func FingerprintCheckout(input ports.CheckoutInput) (string, error) {
	payload, err := json.Marshal(normalizedCheckoutInput{
		UserID:   strings.TrimSpace(input.UserID),
		Delivery: string(input.Delivery),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
