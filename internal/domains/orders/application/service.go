package application

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletapp "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/application"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

// Service runs checkout and the order lifecycle. Every mutating use case is one
// unit of work: either all of its writes commit or none do.
type Service struct {
	store    unitofwork.Store
	postings *walletapp.Postings
	hasRole  authz.RoleChecker
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithRoleChecker installs the capability check for privileged operations.
// Without one, privileged operations are refused.
func WithRoleChecker(check authz.RoleChecker) Option {
	return func(s *Service) {
		if check != nil {
			s.hasRole = check
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService wires the order service. Wallet mutations go through postings so the
// balance and its ledger row are written in the same transaction as the order.
func NewService(store unitofwork.Store, postings *walletapp.Postings, opts ...Option) *Service {
	s := &Service{store: store, postings: postings, hasRole: authz.DenyAll, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.postings == nil {
		s.postings = walletapp.NewPostings(s.now)
	}
	return s
}

// ListForUser returns the user's orders with their frozen lines.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		orders, err = tx.Orders().ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetDetails returns one of the user's orders, or ports.ErrNotFound.
func (s *Service) GetDetails(ctx context.Context, userID string, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		order, err = tx.Orders().GetForUser(ctx, userID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListAll returns every order. Privileged.
func (s *Service) ListAll(ctx context.Context, actorID string) ([]*domain.Order, error) {
	if err := authz.Require(ctx, s.hasRole, actorID, authz.RoleAdmin); err != nil {
		return nil, err
	}
	var orders []*domain.Order
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		orders, err = tx.Orders().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) ListStatuses(_ context.Context) ([]domain.Status, error) {
	return domain.Statuses(), nil
}

var _ ports.Service = (*Service)(nil)
