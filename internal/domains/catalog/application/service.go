package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

// Service is the catalogue's write path. Reservations are owned by the cart
// engine; this service only edits product data, availability and stock levels.
type Service struct {
	store   unitofwork.Store
	hasRole authz.RoleChecker
}

type Option func(*Service)

// WithRoleChecker installs the capability check for catalogue writes.
func WithRoleChecker(check authz.RoleChecker) Option {
	return func(s *Service) {
		if check != nil {
			s.hasRole = check
		}
	}
}

func NewService(store unitofwork.Store, opts ...Option) *Service {
	s := &Service{store: store, hasRole: authz.DenyAll}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		products, err = tx.Products().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product *domain.Product
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		product, err = tx.Products().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// SaveProduct creates a product (ID 0) or replaces its catalogue data. Stock and
// availability of an existing product are kept: they change only through
// reservations, SetAvailability and Restock.
func (s *Service) SaveProduct(ctx context.Context, actorID string, product *domain.Product) (*domain.Product, error) {
	if err := authz.Require(ctx, s.hasRole, actorID, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	var saved *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		next, err := domain.NewProduct(product.ID, product.Name, product.Price, product.Stock)
		if err != nil {
			return err
		}
		next.Description = product.Description
		next.ImageURLs = append([]string(nil), product.ImageURLs...)
		if next.ID != 0 {
			current, err := tx.Products().GetByIDForUpdate(ctx, next.ID)
			switch {
			case err == nil:
				next.Stock = current.Stock
				next.Available = current.Available
				next.Depleted = current.Depleted
			case !errors.Is(err, ports.ErrNotFound):
				return err
			}
		}
		saved, err = tx.Products().Save(ctx, next)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// SetAvailability is the manual withdraw/relist switch.
func (s *Service) SetAvailability(ctx context.Context, actorID string, id int64, available bool) (*domain.Product, error) {
	return s.mutate(ctx, actorID, id, func(p *domain.Product) error {
		p.SetAvailability(available)
		return nil
	})
}

// Restock adds quantity units of stock.
func (s *Service) Restock(ctx context.Context, actorID string, id int64, quantity int) (*domain.Product, error) {
	return s.mutate(ctx, actorID, id, func(p *domain.Product) error {
		return p.Restock(quantity)
	})
}

func (s *Service) mutate(ctx context.Context, actorID string, id int64, change func(*domain.Product) error) (*domain.Product, error) {
	if err := authz.Require(ctx, s.hasRole, actorID, authz.RoleAdmin); err != nil {
		return nil, err
	}
	var product *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		p, err := tx.Products().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := change(p); err != nil {
			return err
		}
		product, err = tx.Products().Save(ctx, p)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

var _ ports.Service = (*Service)(nil)
