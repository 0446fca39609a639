package application

import (
	"errors"
	"fmt"
	"strings"

	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid order input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidDelivery) ||
		errors.Is(err, domain.ErrEmptyUserID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// Error types carried across process boundaries, e.g. as Temporal application
// error types. Each names one business failure of checkout.
const (
	ErrorTypeInvalidInput        = "InvalidInput"
	ErrorTypeEmptyCart           = "EmptyCart"
	ErrorTypeNothingToPay        = "NothingToPay"
	ErrorTypeInsufficientFunds   = "InsufficientFunds"
	ErrorTypeInsufficientStock   = "InsufficientStock"
	ErrorTypeProductUnavailable  = "ProductUnavailable"
	ErrorTypeWalletNotFound      = "WalletNotFound"
	ErrorTypeIdempotencyConflict = "IdempotencyConflict"
	ErrorTypeNotFound            = "NotFound"
	ErrorTypeInvalidState        = "InvalidState"
	ErrorTypeForbidden           = "Forbidden"
)

var typedErrors = []struct {
	kind     string
	sentinel error
}{
	{ErrorTypeInvalidInput, ErrInvalidInput},
	{ErrorTypeEmptyCart, domain.ErrEmptyCart},
	{ErrorTypeNothingToPay, domain.ErrNothingToPay},
	{ErrorTypeInsufficientFunds, walletdomain.ErrInsufficientFunds},
	{ErrorTypeInsufficientStock, catalogdomain.ErrInsufficientStock},
	{ErrorTypeProductUnavailable, catalogdomain.ErrProductUnavailable},
	{ErrorTypeWalletNotFound, walletports.ErrNotFound},
	{ErrorTypeIdempotencyConflict, ports.ErrIdempotencyConflict},
	{ErrorTypeNotFound, ports.ErrNotFound},
	{ErrorTypeInvalidState, domain.ErrInvalidState},
	{ErrorTypeForbidden, authz.ErrForbidden},
}

// ErrorType classifies a business error. It returns "" for unexpected failures,
// which callers may retry.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	for _, typed := range typedErrors {
		if errors.Is(err, typed.sentinel) {
			return typed.kind
		}
	}
	if errors.Is(err, catalogports.ErrNotFound) || errors.Is(err, cartports.ErrNotFound) {
		return ErrorTypeNotFound
	}
	return ""
}

// ErrorFromType rebuilds an error that matches the sentinel behind kind. A message
// starting with the sentinel text is not repeated.
func ErrorFromType(kind, message string) error {
	for _, typed := range typedErrors {
		if typed.kind == kind {
			detail := strings.TrimPrefix(message, typed.sentinel.Error())
			detail = strings.TrimPrefix(detail, ": ")
			if detail == "" {
				return typed.sentinel
			}
			return fmt.Errorf("%w: %s", typed.sentinel, detail)
		}
	}
	return errors.New(message)
}
