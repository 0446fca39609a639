package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/domains/catalog/domain"
)

// Product is the HTTP representation of a catalogue product.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Stock       int      `json:"stock"`
	Available   bool     `json:"available"`
	ImageURLs   []string `json:"imageUrls"`
}

// ProductInput is the payload of catalogue writes. Stock is honoured only on create.
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURLs   []string        `json:"imageUrls"`
}

// AvailabilityInput toggles a product on or off.
type AvailabilityInput struct {
	Available *bool `json:"available" binding:"required"`
}

// RestockInput adds stock.
type RestockInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ToDomainProduct maps a write payload; id 0 creates.
func ToDomainProduct(id int64, input ProductInput) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURLs:   append([]string(nil), input.ImageURLs...),
	}
}

func FromDomainProduct(p *domain.Product) Product {
	images := append([]string{}, p.ImageURLs...)
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Available:   p.Available,
		ImageURLs:   images,
	}
}

func FromDomainProducts(products []*domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromDomainProduct(p))
	}
	return out
}
