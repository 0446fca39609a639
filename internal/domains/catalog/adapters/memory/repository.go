package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product adapter. It does no locking of its own:
// the memory unit of work serialises access and hands each transaction a clone.
type Repository struct {
	products map[int64]*domain.Product
	nextID   int64
}

func NewRepository() *Repository {
	return &Repository{products: map[int64]*domain.Product{}}
}

// Clone copies the repository state for a transaction.
func (r *Repository) Clone() *Repository {
	clone := &Repository{products: make(map[int64]*domain.Product, len(r.products)), nextID: r.nextID}
	for id, p := range r.products {
		clone.products[id] = p.Clone()
	}
	return clone
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.Product, error) {
	result := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result[id] = p.Clone()
		}
	}
	return result, nil
}

func (r *Repository) FindByIDsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	return r.FindByIDs(ctx, ids)
}

func (r *Repository) List(_ context.Context) ([]*domain.Product, error) {
	list := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
