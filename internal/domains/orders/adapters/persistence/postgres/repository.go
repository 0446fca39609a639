package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Models lists the records owned by this adapter for schema migration.
func Models() []any {
	return []any{&orderStatusRecord{}, &orderRecord{}, &orderItemRecord{}, &checkoutKeyRecord{}}
}

type orderStatusRecord struct {
	ID   int    `gorm:"primaryKey;column:id;autoIncrement:false"`
	Name string `gorm:"column:name;size:32;not null;uniqueIndex"`
}

func (orderStatusRecord) TableName() string { return "order_statuses" }

// StatusRows returns the reference rows seeded by migrations.
func StatusRows() []any {
	rows := make([]any, 0, len(domain.Statuses()))
	for _, s := range domain.Statuses() {
		rows = append(rows, &orderStatusRecord{ID: int(s.ID), Name: s.Name})
	}
	return rows
}

type orderRecord struct {
	ID          int64             `gorm:"primaryKey;column:id"`
	CartID      int64             `gorm:"column:cart_id;not null;index"`
	UserID      string            `gorm:"column:user_id;size:128;not null;index"`
	StatusID    int               `gorm:"column:status_id;not null;index"`
	OrderedAt   time.Time         `gorm:"column:order_date;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null;check:chk_orders_total,total_amount >= 0"`
	Delivery    string            `gorm:"column:delivery_option;size:16;not null"`
	Items       []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	OrderID     int64           `gorm:"column:order_id;not null;index"`
	ProductID   int64           `gorm:"column:product_id;not null"`
	ProductName string          `gorm:"column:product_name;size:255;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity > 0"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(ctx, r.db, "id = ?", id)
}

func (r *Repository) GetForUser(ctx context.Context, userID string, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(ctx, r.db, "id = ? AND user_id = ?", id, strings.TrimSpace(userID))
}

func (r *Repository) GetForUserForUpdate(ctx context.Context, userID string, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}),
		"id = ? AND user_id = ?", id, strings.TrimSpace(userID))
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.StatusID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Update("status_id", int(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", strings.TrimSpace(userID)))
}

func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx))
}

func (r *Repository) first(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Order, error) {
	var record orderRecord
	err := db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where(query, args...).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) find(db *gorm.DB) ([]*domain.Order, error) {
	var records []orderRecord
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	list := make([]*domain.Order, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(o *domain.Order) orderRecord {
	items := make([]orderItemRecord, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, orderItemRecord{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	return orderRecord{
		ID:          o.ID,
		CartID:      o.CartID,
		UserID:      o.UserID,
		StatusID:    int(o.Status),
		OrderedAt:   o.OrderedAt,
		TotalAmount: o.TotalAmount,
		Delivery:    string(o.Delivery),
		Items:       items,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.LineItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return &domain.Order{
		ID:          r.ID,
		CartID:      r.CartID,
		UserID:      r.UserID,
		Status:      domain.StatusID(r.StatusID),
		OrderedAt:   r.OrderedAt,
		TotalAmount: r.TotalAmount,
		Delivery:    domain.DeliveryOption(r.Delivery),
		Items:       items,
	}
}
