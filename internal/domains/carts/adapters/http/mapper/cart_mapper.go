package mapper

import (
	"time"

	"github.com/Apurer/go-gin-shop-server/internal/domains/carts/domain"
)

// Cart is the HTTP representation of the active cart.
type Cart struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Active     bool      `json:"active"`
	TotalPrice string    `json:"totalPrice"`
	Items      []Item    `json:"items"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Item is one cart line priced at the current product price.
type Item struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	UnitPrice   string    `json:"unitPrice,omitempty"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"lineTotal"`
	AddedAt     time.Time `json:"addedAt"`
}

// AddItemInput is the add-to-cart payload.
type AddItemInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// UpdateItemInput sets the absolute quantity of a line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

func FromDomainCart(c *domain.Cart) Cart {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, FromDomainItem(item))
	}
	return Cart{
		ID:         c.ID,
		UserID:     c.UserID,
		Active:     c.Active,
		TotalPrice: c.TotalPrice.StringFixed(2),
		Items:      items,
		UpdatedAt:  c.UpdatedAt,
	}
}

func FromDomainItem(i *domain.Item) Item {
	out := Item{
		ID:        i.ID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		LineTotal: i.LineTotal().StringFixed(2),
		AddedAt:   i.AddedAt,
	}
	if i.Product != nil {
		out.ProductName = i.Product.Name
		out.UnitPrice = i.Product.Price.StringFixed(2)
	}
	return out
}
