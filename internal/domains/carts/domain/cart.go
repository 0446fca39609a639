package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-shop-server/internal/shared/money"
)

var (
	ErrEmptyUserID     = errors.New("user id is required")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrCartInactive    = errors.New("cart is no longer active")
)

// Item is one (product, quantity) line of a cart. Product is resolved on load
// and is not persisted with the line.
type Item struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	AddedAt   time.Time
	Product   *catalogdomain.Product
}

// LineTotal prices the line at the resolved product's current price.
func (i *Item) LineTotal() decimal.Decimal {
	if i == nil || i.Product == nil {
		return decimal.Zero
	}
	return i.Product.LineTotal(i.Quantity)
}

// Cart is the single mutable, not yet checked out basket of a user.
type Cart struct {
	ID         int64
	UserID     string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	TotalPrice decimal.Decimal
	Items      []*Item
}

// NewCart builds an empty active cart.
func NewCart(userID string, now time.Time) (*Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return &Cart{UserID: userID, Active: true, CreatedAt: now, UpdatedAt: now, TotalPrice: decimal.Zero}, nil
}

// ComputeTotal is the pure sum of line totals.
func (c *Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return money.Round(total)
}

// Recalculate refreshes the cached total from the lines.
func (c *Cart) Recalculate(now time.Time) {
	c.TotalPrice = c.ComputeTotal()
	c.UpdatedAt = now
}

// IsConsistent reports whether the cached total still matches the lines.
func (c *Cart) IsConsistent() bool {
	return money.Equal(c.TotalPrice, c.ComputeTotal())
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the line holding productID.
func (c *Cart) FindItem(productID int64) *Item {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// FindItemByID returns the line with the given id.
func (c *Cart) FindItemByID(itemID int64) *Item {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// ProductIDs lists the distinct products referenced by the lines.
func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	seen := make(map[int64]struct{}, len(c.Items))
	for _, item := range c.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Resolve attaches products to the lines.
func (c *Cart) Resolve(products map[int64]*catalogdomain.Product) {
	for _, item := range c.Items {
		item.Product = products[item.ProductID]
	}
}

// Deactivate soft-closes the cart after checkout.
func (c *Cart) Deactivate(now time.Time) error {
	if !c.Active {
		return ErrCartInactive
	}
	c.Active = false
	c.UpdatedAt = now
	return nil
}

// Clone returns a deep copy; resolved products are shared.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = make([]*Item, 0, len(c.Items))
	for _, item := range c.Items {
		copied := *item
		clone.Items = append(clone.Items, &copied)
	}
	return &clone
}
