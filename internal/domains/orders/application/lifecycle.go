package application

import (
	"context"
	"errors"
	"fmt"

	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	walletdomain "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/domain"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

// UpdateStatus moves an order to any known status. Privileged; no transition
// table is enforced beyond existence of the order and the status.
func (s *Service) UpdateStatus(ctx context.Context, actorID string, orderID int64, status domain.StatusID) (*domain.Order, error) {
	if err := authz.Require(ctx, s.hasRole, actorID, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if _, ok := domain.LookupStatus(status); !ok {
		return nil, domain.ErrStatusNotFound
	}
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel refunds a live order, returns its lines to stock and marks it Cancelled,
// all in one transaction. An order that was refunded before is rejected. The refund amount is the linked purchase entry's amount;
// the frozen order total is used only when no purchase entry exists.
func (s *Service) Cancel(ctx context.Context, userID string, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		order, err = tx.Orders().GetForUserForUpdate(ctx, userID, orderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return fmt.Errorf("%w: order %d is %s", err, order.ID, order.Status)
		}
		// A reopened order keeps its earlier refund; compensation runs once per order.
		switch _, err := tx.Transactions().FindByOrder(ctx, order.ID, walletdomain.TransactionRefund); {
		case err == nil:
			return fmt.Errorf("%w: order %d was already refunded", domain.ErrInvalidState, order.ID)
		case !errors.Is(err, walletports.ErrTransactionNotFound):
			return err
		}

		refund := order.TotalAmount
		purchase, err := tx.Transactions().FindByOrder(ctx, order.ID, walletdomain.TransactionPurchase)
		switch {
		case err == nil:
			refund = purchase.Amount
		case !errors.Is(err, walletports.ErrTransactionNotFound):
			return err
		}

		products, err := tx.Products().FindByIDsForUpdate(ctx, order.ProductIDs())
		if err != nil {
			return err
		}
		for _, line := range order.Items {
			product, ok := products[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d", catalogports.ErrNotFound, line.ProductID)
			}
			product.Release(line.Quantity)
		}
		for _, id := range order.ProductIDs() {
			if _, err := tx.Products().Save(ctx, products[id]); err != nil {
				return err
			}
		}

		if _, _, err := s.postings.Refund(ctx, tx, order.UserID, order.ID, refund); err != nil {
			return err
		}
		return tx.Orders().UpdateStatus(ctx, order.ID, order.Status)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}
