package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cartdomain "github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
)

// Checkout converts the user's active cart into a Processing order, debits the
// wallet, appends the purchase to the ledger and deactivates the cart. Stock was
// reserved when the lines were added, so checkout only verifies it.
func (s *Service) Checkout(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	if input.UserID == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	if input.Delivery != domain.DeliveryPickUp && input.Delivery != domain.DeliveryDeliver {
		return nil, mapError(domain.ErrInvalidDelivery)
	}
	var requestHash string
	if input.IdempotencyKey != "" {
		var err error
		if requestHash, err = FingerprintCheckout(input); err != nil {
			return nil, err
		}
	}

	var result *ports.CheckoutResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		// The cart lock comes first: a concurrent retry with the same key waits
		// here and then sees the committed key below.
		cart, err := tx.Carts().GetActiveByUserForUpdate(ctx, input.UserID)
		if err != nil && !errors.Is(err, cartports.ErrNotFound) {
			return err
		}
		if input.IdempotencyKey != "" {
			replay, err := s.replay(ctx, tx, input, requestHash)
			if err != nil || replay != nil {
				result = replay
				return err
			}
		}
		if cart == nil || cart.IsEmpty() {
			return domain.ErrEmptyCart
		}
		result, err = s.convert(ctx, tx, cart, input.Delivery)
		if err != nil {
			return err
		}
		if input.IdempotencyKey != "" {
			_, err = tx.CheckoutKeys().Save(ctx, ports.CheckoutKey{
				Key:         input.IdempotencyKey,
				UserID:      input.UserID,
				RequestHash: requestHash,
				OrderID:     result.Order.ID,
				CreatedAt:   result.Order.OrderedAt,
			})
		}
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) convert(ctx context.Context, tx unitofwork.Tx, cart *cartdomain.Cart, delivery domain.DeliveryOption) (*ports.CheckoutResult, error) {
	now := s.now()
	products, err := tx.Products().FindByIDsForUpdate(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	cart.Resolve(products)
	for _, item := range cart.Items {
		if item.Product == nil {
			return nil, &catalogdomain.StockError{ProductID: item.ProductID, Requested: item.Quantity, Err: catalogdomain.ErrProductUnavailable}
		}
	}
	cart.Recalculate(now)
	if err := tx.Carts().Save(ctx, cart); err != nil {
		return nil, err
	}

	wallet, err := tx.Wallets().GetByUserForUpdate(ctx, cart.UserID)
	if err != nil {
		return nil, err
	}
	if !wallet.Covers(cart.TotalPrice) {
		return nil, fmt.Errorf("%w: balance %s, order total %s",
			walletdomain.ErrInsufficientFunds, wallet.Balance.StringFixed(2), cart.TotalPrice.StringFixed(2))
	}

	lines := make([]domain.LineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if err := item.Product.ReservationHolds(item.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, domain.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
		})
	}

	order, err := domain.NewOrder(cart.ID, cart.UserID, cart.TotalPrice, delivery, lines, now)
	if err != nil {
		return nil, err
	}
	order, err = tx.Orders().Create(ctx, order)
	if err != nil {
		return nil, err
	}
	txn, err := s.postings.Purchase(ctx, tx, wallet, order.ID, order.TotalAmount)
	if err != nil {
		return nil, err
	}
	if err := cart.Deactivate(now); err != nil {
		return nil, err
	}
	if err := tx.Carts().Save(ctx, cart); err != nil {
		return nil, err
	}
	return &ports.CheckoutResult{Order: order, Transaction: txn, Balance: wallet.Balance}, nil
}

// replay returns the earlier result for a known key, nil for an unknown one.
func (s *Service) replay(ctx context.Context, tx unitofwork.Tx, input ports.CheckoutInput, requestHash string) (*ports.CheckoutResult, error) {
	record, err := tx.CheckoutKeys().Get(ctx, input.IdempotencyKey)
	if err != nil || record == nil {
		return nil, err
	}
	if record.UserID != input.UserID || record.RequestHash != requestHash {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := tx.Orders().GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	txn, err := tx.Transactions().FindByOrder(ctx, order.ID, walletdomain.TransactionPurchase)
	if err != nil {
		return nil, err
	}
	wallet, err := tx.Wallets().GetByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ports.CheckoutResult{Order: order, Transaction: txn, Balance: wallet.Balance, Replayed: true}, nil
}
