package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid wallet input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrEmptyUserID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
