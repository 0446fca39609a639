package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order adapter. Access is serialised by the memory unit of work.
type Repository struct {
	orders map[int64]*domain.Order
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}}
}

// Clone copies the repository state for a transaction.
func (r *Repository) Clone() *Repository {
	clone := &Repository{orders: make(map[int64]*domain.Order, len(r.orders)), nextID: r.nextID}
	for id, o := range r.orders {
		clone.orders[id] = o.Clone()
	}
	return clone
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	r.nextID++
	clone.ID = r.nextID
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) GetForUser(ctx context.Context, userID string, id int64) (*domain.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != strings.TrimSpace(userID) {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

func (r *Repository) GetForUserForUpdate(ctx context.Context, userID string, id int64) (*domain.Order, error) {
	return r.GetForUser(ctx, userID, id)
}

func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.StatusID) error {
	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	order.Status = status
	return nil
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	userID = strings.TrimSpace(userID)
	return r.list(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	return r.list(func(*domain.Order) bool { return true }), nil
}

func (r *Repository) list(keep func(*domain.Order) bool) []*domain.Order {
	list := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			list = append(list, o.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
