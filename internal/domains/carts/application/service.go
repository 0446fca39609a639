package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork"
)

// Service is the cart engine. Adding to a cart reserves stock immediately: the
// product counter is decremented in the same transaction that writes the line,
// under the product's row lock, so concurrent shoppers can never oversell.
type Service struct {
	store unitofwork.Store
	now   func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService wires the cart engine over the unit of work.
func NewService(store unitofwork.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetActiveCart returns the user's active cart with products resolved, or ports.ErrNotFound.
func (s *Service) GetActiveCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart *domain.Cart
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		cart, err = tx.Carts().GetActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		return resolveProducts(ctx, tx, cart, nil)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return cart, nil
}

// EnsureActiveCart returns the active cart, creating an empty one when absent.
func (s *Service) EnsureActiveCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	var cart *domain.Cart
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		var err error
		cart, err = tx.Carts().CreateActive(ctx, userID, s.now())
		if err != nil {
			return err
		}
		return resolveProducts(ctx, tx, cart, nil)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return cart, nil
}

// AddItem reserves quantity units of a product into the user's active cart.
// A repeat add merges into the existing line and checks stock for the delta only.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*domain.Item, error) {
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	var saved *domain.Item
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		now := s.now()
		cart, err := tx.Carts().CreateActive(ctx, userID, now)
		if err != nil {
			return err
		}
		product, err := tx.Products().GetByIDForUpdate(ctx, productID)
		if errors.Is(err, catalogports.ErrNotFound) {
			return &catalogdomain.StockError{ProductID: productID, Requested: quantity, Err: catalogdomain.ErrProductUnavailable}
		}
		if err != nil {
			return err
		}
		if err := product.Reserve(quantity); err != nil {
			return err
		}
		if _, err := tx.Products().Save(ctx, product); err != nil {
			return err
		}

		item := cart.FindItem(productID)
		if item == nil {
			item = &domain.Item{CartID: cart.ID, ProductID: productID, Quantity: quantity, AddedAt: now}
		} else {
			item.Quantity += quantity
		}
		saved, err = tx.Carts().SaveItem(ctx, item)
		if err != nil {
			return err
		}
		saved.Product = product
		replaceItem(cart, saved)
		return s.persistTotal(ctx, tx, cart, map[int64]*catalogdomain.Product{product.ID: product}, now)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdateItemQuantity sets a line of the caller's active cart to quantity and applies
// the signed difference to product stock.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*domain.Item, error) {
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	var saved *domain.Item
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		now := s.now()
		cart, item, err := lockLine(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		product, err := tx.Products().GetByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		switch delta := quantity - item.Quantity; {
		case delta > 0:
			if err := product.Reserve(delta); err != nil {
				return err
			}
		case delta < 0:
			product.Release(-delta)
		}
		if _, err := tx.Products().Save(ctx, product); err != nil {
			return err
		}
		item.Quantity = quantity
		saved, err = tx.Carts().SaveItem(ctx, item)
		if err != nil {
			return err
		}
		saved.Product = product
		replaceItem(cart, saved)
		return s.persistTotal(ctx, tx, cart, map[int64]*catalogdomain.Product{product.ID: product}, now)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// RemoveItem deletes a line and returns its quantity to stock. It reports false
// when the line is not in the caller's active cart.
func (s *Service) RemoveItem(ctx context.Context, userID string, itemID int64) (bool, error) {
	removed := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		cart, item, err := lockLine(ctx, tx, userID, itemID)
		if errors.Is(err, ports.ErrItemNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		product, err := tx.Products().GetByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		product.Release(item.Quantity)
		if _, err := tx.Products().Save(ctx, product); err != nil {
			return err
		}
		if err := tx.Carts().DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		dropItem(cart, item.ID)
		removed = true
		return s.persistTotal(ctx, tx, cart, map[int64]*catalogdomain.Product{product.ID: product}, s.now())
	})
	if err != nil {
		return false, mapError(err)
	}
	return removed, nil
}

// ClearCart empties the active cart and returns every reservation to stock.
// The cart stays active. It reports false when the user has no active cart.
func (s *Service) ClearCart(ctx context.Context, userID string) (bool, error) {
	cleared := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		cart, err := tx.Carts().GetActiveByUserForUpdate(ctx, userID)
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		products, err := tx.Products().FindByIDsForUpdate(ctx, cart.ProductIDs())
		if err != nil {
			return err
		}
		for _, item := range cart.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return catalogports.ErrNotFound
			}
			product.Release(item.Quantity)
		}
		for _, product := range products {
			if _, err := tx.Products().Save(ctx, product); err != nil {
				return err
			}
		}
		if err := tx.Carts().DeleteItems(ctx, cart.ID); err != nil {
			return err
		}
		cart.Items = nil
		cleared = true
		return s.persistTotal(ctx, tx, cart, nil, s.now())
	})
	if err != nil {
		return false, mapError(err)
	}
	return cleared, nil
}

// TotalPrice returns the cached total of the active cart, or zero.
func (s *Service) TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.store.View(ctx, func(ctx context.Context, tx unitofwork.Tx) error {
		cart, err := tx.Carts().GetActiveByUser(ctx, userID)
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		total = cart.TotalPrice
		return nil
	})
	if err != nil {
		return decimal.Zero, mapError(err)
	}
	return total, nil
}

// persistTotal resolves every line, recomputes the cached total and saves the cart header.
func (s *Service) persistTotal(ctx context.Context, tx unitofwork.Tx, cart *domain.Cart, known map[int64]*catalogdomain.Product, now time.Time) error {
	if err := resolveProducts(ctx, tx, cart, known); err != nil {
		return err
	}
	cart.Recalculate(now)
	return tx.Carts().Save(ctx, cart)
}

// lockLine locks the caller's active cart and finds itemID in it.
func lockLine(ctx context.Context, tx unitofwork.Tx, userID string, itemID int64) (*domain.Cart, *domain.Item, error) {
	cart, err := tx.Carts().GetActiveByUserForUpdate(ctx, userID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil, ports.ErrItemNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	item := cart.FindItemByID(itemID)
	if item == nil {
		return nil, nil, ports.ErrItemNotFound
	}
	return cart, item, nil
}

// resolveProducts attaches products to the lines, loading those not already known.
func resolveProducts(ctx context.Context, tx unitofwork.Tx, cart *domain.Cart, known map[int64]*catalogdomain.Product) error {
	missing := make([]int64, 0, len(cart.Items))
	for _, id := range cart.ProductIDs() {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	products := make(map[int64]*catalogdomain.Product, len(cart.Items))
	if len(missing) > 0 {
		loaded, err := tx.Products().FindByIDs(ctx, missing)
		if err != nil {
			return err
		}
		for id, p := range loaded {
			products[id] = p
		}
	}
	for id, p := range known {
		products[id] = p
	}
	cart.Resolve(products)
	return nil
}

func replaceItem(cart *domain.Cart, item *domain.Item) {
	for i, existing := range cart.Items {
		if existing.ID == item.ID {
			cart.Items[i] = item
			return
		}
	}
	cart.Items = append(cart.Items, item)
}

func dropItem(cart *domain.Cart, itemID int64) {
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
}

var _ ports.Service = (*Service)(nil)
