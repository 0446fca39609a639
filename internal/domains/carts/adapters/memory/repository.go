package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory cart adapter. Access is serialised by the memory unit of work.
type Repository struct {
	carts      map[int64]*domain.Cart
	items      map[int64]*domain.Item
	nextCartID int64
	nextItemID int64
}

func NewRepository() *Repository {
	return &Repository{carts: map[int64]*domain.Cart{}, items: map[int64]*domain.Item{}}
}

// Clone copies the repository state for a transaction.
func (r *Repository) Clone() *Repository {
	clone := &Repository{
		carts:      make(map[int64]*domain.Cart, len(r.carts)),
		items:      make(map[int64]*domain.Item, len(r.items)),
		nextCartID: r.nextCartID,
		nextItemID: r.nextItemID,
	}
	for id, c := range r.carts {
		copied := *c
		copied.Items = nil
		clone.carts[id] = &copied
	}
	for id, item := range r.items {
		copied := *item
		copied.Product = nil
		clone.items[id] = &copied
	}
	return clone
}

func (r *Repository) CreateActive(ctx context.Context, userID string, now time.Time) (*domain.Cart, error) {
	if existing, err := r.GetActiveByUser(ctx, userID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	cart, err := domain.NewCart(userID, now)
	if err != nil {
		return nil, err
	}
	r.nextCartID++
	cart.ID = r.nextCartID
	r.carts[cart.ID] = cart
	return r.load(cart), nil
}

func (r *Repository) GetActiveByUser(_ context.Context, userID string) (*domain.Cart, error) {
	userID = strings.TrimSpace(userID)
	for _, c := range r.carts {
		if c.Active && c.UserID == userID {
			return r.load(c), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) GetActiveByUserForUpdate(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.GetActiveByUser(ctx, userID)
}

func (r *Repository) Save(_ context.Context, cart *domain.Cart) error {
	if cart == nil {
		return errors.New("cart is nil")
	}
	stored, ok := r.carts[cart.ID]
	if !ok {
		return ports.ErrNotFound
	}
	stored.Active = cart.Active
	stored.TotalPrice = cart.TotalPrice
	stored.UpdatedAt = cart.UpdatedAt
	return nil
}

func (r *Repository) GetItem(_ context.Context, itemID int64) (*domain.Item, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, ports.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *Repository) SaveItem(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("cart item is nil")
	}
	if item.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if _, ok := r.carts[item.CartID]; !ok {
		return nil, ports.ErrNotFound
	}
	copied := *item
	copied.Product = nil
	if copied.ID == 0 {
		for _, existing := range r.items {
			if existing.CartID == copied.CartID && existing.ProductID == copied.ProductID {
				return nil, errors.New("cart already holds a line for this product")
			}
		}
		r.nextItemID++
		copied.ID = r.nextItemID
	} else if _, ok := r.items[copied.ID]; !ok {
		return nil, ports.ErrItemNotFound
	}
	r.items[copied.ID] = &copied
	result := copied
	result.Product = item.Product
	return &result, nil
}

func (r *Repository) DeleteItem(_ context.Context, itemID int64) error {
	if _, ok := r.items[itemID]; !ok {
		return ports.ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *Repository) DeleteItems(_ context.Context, cartID int64) error {
	for id, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *Repository) load(c *domain.Cart) *domain.Cart {
	clone := *c
	clone.Items = nil
	for _, item := range r.items {
		if item.CartID == c.ID {
			copied := *item
			clone.Items = append(clone.Items, &copied)
		}
	}
	sort.Slice(clone.Items, func(i, j int) bool { return clone.Items[i].ID < clone.Items[j].ID })
	return &clone
}
