package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/shared/money"
)

var (
	ErrEmptyName          = errors.New("product name is required")
	ErrNegativePrice      = errors.New("product price must not be negative")
	ErrNegativeStock      = errors.New("product stock must not be negative")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// Product is the slice of the catalogue entry the checkout core reads and writes.
// Name, description, price and images belong to the catalogue; stock and
// availability are mutated by reservations.
//
// Available is an independent flag. A reservation that drains the stock forces it
// off and marks the product Depleted; restoring stock re-enables only depleted
// products, so a manual withdrawal survives cart releases and cancellations.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Available   bool
	Depleted    bool
	ImageURLs   []string
}

// StockError names the product behind a reservation failure.
type StockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
	Err         error
}

func (e *StockError) Error() string {
	subject := fmt.Sprintf("product %d", e.ProductID)
	if e.ProductName != "" {
		subject = fmt.Sprintf("product %d (%s)", e.ProductID, e.ProductName)
	}
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("%s: %s requested %d, %d in stock", e.Err, subject, e.Requested, e.Available)
	}
	return fmt.Sprintf("%s: %s", e.Err, subject)
}

func (e *StockError) Unwrap() error { return e.Err }

// NewProduct validates catalogue input. New products are available when stocked.
func NewProduct(id int64, name string, price decimal.Decimal, stock int) (*Product, error) {
	p := &Product{ID: id, Name: strings.TrimSpace(name), Price: money.Round(price), Stock: stock, Available: stock > 0}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces the catalogue invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Reserve takes qty units out of shared stock for a cart line.
func (p *Product) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Available {
		return p.stockError(ErrProductUnavailable, qty)
	}
	if qty > p.Stock {
		return p.stockError(ErrInsufficientStock, qty)
	}
	p.Stock -= qty
	if p.Stock == 0 {
		p.Available = false
		p.Depleted = true
	}
	return nil
}

// Release puts qty units back into stock.
func (p *Product) Release(qty int) {
	if qty <= 0 {
		return
	}
	p.Stock += qty
	if p.Depleted && p.Stock > 0 {
		p.Available = true
		p.Depleted = false
	}
}

// SetAvailability is the catalogue's manual override.
func (p *Product) SetAvailability(available bool) {
	p.Available = available
	p.Depleted = false
}

// Restock adds catalogue stock and re-enables a product that sold out.
func (p *Product) Restock(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	p.Release(qty)
	return nil
}

// ReservationHolds reports whether a line reserved earlier is still sellable.
// Stock for the line was taken at add time, so only a manual withdrawal or
// a corrupted counter invalidates it.
func (p *Product) ReservationHolds(qty int) error {
	if p.Stock < 0 {
		return p.stockError(ErrInsufficientStock, qty)
	}
	if !p.Available && !p.Depleted {
		return p.stockError(ErrProductUnavailable, qty)
	}
	return nil
}

// LineTotal prices qty units at the current price.
func (p *Product) LineTotal(qty int) decimal.Decimal {
	return money.Round(p.Price.Mul(decimal.NewFromInt(int64(qty))))
}

func (p *Product) stockError(err error, requested int) error {
	return &StockError{ProductID: p.ID, ProductName: p.Name, Requested: requested, Available: p.Stock, Err: err}
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.ImageURLs = append([]string(nil), p.ImageURLs...)
	return &clone
}
