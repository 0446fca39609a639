package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM. It is bound to whatever
// *gorm.DB it receives, usually a transaction handle from the unit of work.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the records owned by this adapter for schema migration.
func Models() []any {
	return []any{&productRecord{}}
}

type productRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;check:chk_products_stock,stock >= 0"`
	Available   bool            `gorm:"column:available;not null;index"`
	Depleted    bool            `gorm:"column:depleted;not null"`
	ImageURLs   pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Save inserts a product, or updates catalogue and stock columns when it exists.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(product)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":        record.Name,
				"description": record.Description,
				"price":       record.Price,
				"stock":       record.Stock,
				"available":   record.Available,
				"depleted":    record.Depleted,
				"image_urls":  record.ImageURLs,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches a product without locking it.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.get(ctx, r.db, id)
}

// GetByIDForUpdate fetches a product and holds its row lock.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.get(ctx, r.locking(), id)
}

func (r *Repository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	return r.find(ctx, r.db, ids)
}

func (r *Repository) FindByIDsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	return r.find(ctx, r.locking(), ids)
}

// List returns all products ordered by id.
func (r *Repository) List(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

func (r *Repository) get(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) find(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := make(map[int64]*domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var records []productRecord
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		result[records[i].ID] = records[i].toDomain()
	}
	return result, nil
}

func (r *Repository) locking() *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func toRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Available:   p.Available,
		Depleted:    p.Depleted,
		ImageURLs:   pq.StringArray(append([]string(nil), p.ImageURLs...)),
	}
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Available:   r.Available,
		Depleted:    r.Depleted,
		ImageURLs:   append([]string(nil), r.ImageURLs...),
	}
}
