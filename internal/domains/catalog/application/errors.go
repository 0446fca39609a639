package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid product input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
