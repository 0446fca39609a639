package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists carts in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the records owned by this adapter for schema migration.
func Models() []any {
	return []any{&cartRecord{}, &cartItemRecord{}}
}

// cartRecord carries a partial unique index so a user has at most one active cart.
type cartRecord struct {
	ID         int64           `gorm:"primaryKey;column:id"`
	UserID     string          `gorm:"column:user_id;size:128;not null;uniqueIndex:ux_carts_user_active,where:active"`
	Active     bool            `gorm:"column:active;not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type cartItemRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	CartID    int64     `gorm:"column:cart_id;not null;uniqueIndex:ux_cart_items_cart_product"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:ux_cart_items_cart_product;index"`
	Quantity  int       `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity > 0"`
	AddedAt   time.Time `gorm:"column:date_added;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

// CreateActive inserts an empty active cart unless one exists, then returns the locked row.
func (r *Repository) CreateActive(ctx context.Context, userID string, now time.Time) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	cart, err := domain.NewCart(userID, now)
	if err != nil {
		return nil, err
	}
	record := cartRecord{UserID: cart.UserID, Active: true, TotalPrice: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "user_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "active"}}},
			DoNothing:   true,
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetActiveByUserForUpdate(ctx, cart.UserID)
}

// GetActiveByUser loads the active cart and its lines.
func (r *Repository) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.getActive(ctx, r.db, userID)
}

// GetActiveByUserForUpdate loads the active cart and holds its row lock.
func (r *Repository) GetActiveByUserForUpdate(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.getActive(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

// Save updates the cart header.
func (r *Repository) Save(ctx context.Context, cart *domain.Cart) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if cart == nil {
		return errors.New("cart is nil")
	}
	result := r.db.WithContext(ctx).Model(&cartRecord{}).Where("id = ?", cart.ID).Updates(map[string]any{
		"active":      cart.Active,
		"total_price": cart.TotalPrice,
		"updated_at":  cart.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record cartItemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrItemNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// SaveItem inserts a new line or updates the quantity of an existing one.
func (r *Repository) SaveItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cart item is nil")
	}
	if item.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	record := toItemRecord(item)
	if record.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
	} else {
		result := r.db.WithContext(ctx).Model(&cartItemRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
			"quantity":   record.Quantity,
			"updated_at": gorm.Expr("NOW()"),
		})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ports.ErrItemNotFound
		}
	}
	saved := record.toDomain()
	saved.Product = item.Product
	return saved, nil
}

func (r *Repository) DeleteItem(ctx context.Context, itemID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&cartItemRecord{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrItemNotFound
	}
	return nil
}

func (r *Repository) DeleteItems(ctx context.Context, cartID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&cartItemRecord{}).Error
}

func (r *Repository) getActive(ctx context.Context, db *gorm.DB, userID string) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	var record cartRecord
	if err := db.WithContext(ctx).First(&record, "user_id = ? AND active", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []cartItemRecord
	if err := r.db.WithContext(ctx).Where("cart_id = ?", record.ID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	cart := record.toDomain()
	for i := range items {
		cart.Items = append(cart.Items, items[i].toDomain())
	}
	return cart, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func (r cartRecord) toDomain() *domain.Cart {
	return &domain.Cart{
		ID:         r.ID,
		UserID:     r.UserID,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		TotalPrice: r.TotalPrice,
	}
}

func toItemRecord(item *domain.Item) cartItemRecord {
	return cartItemRecord{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
}

func (r cartItemRecord) toDomain() *domain.Item {
	return &domain.Item{
		ID:        r.ID,
		CartID:    r.CartID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		AddedAt:   r.AddedAt,
	}
}
