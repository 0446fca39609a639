package mapper

import (
	"time"

	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
	walletmapper "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/http/mapper"
)

// Status is an order status reference row.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LineItem is a frozen order line.
type LineItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"userId"`
	Status      Status     `json:"status"`
	OrderedAt   time.Time  `json:"orderedAt"`
	TotalAmount string     `json:"totalAmount"`
	Delivery    string     `json:"delivery"`
	Items       []LineItem `json:"items"`
}

// Checkout is the response of a committed (or replayed) checkout.
type Checkout struct {
	Order       Order                     `json:"order"`
	Transaction *walletmapper.Transaction `json:"transaction,omitempty"`
	Balance     string                    `json:"balance"`
	Replayed    bool                      `json:"replayed"`
}

// CheckoutInput is the checkout payload.
type CheckoutInput struct {
	Delivery string `json:"delivery" binding:"required"`
}

// StatusInput is the admin status change payload.
type StatusInput struct {
	StatusID int `json:"statusId" binding:"required"`
}

func FromStatus(s domain.Status) Status {
	return Status{ID: int(s.ID), Name: s.Name}
}

func FromStatuses(list []domain.Status) []Status {
	out := make([]Status, 0, len(list))
	for _, s := range list {
		out = append(out, FromStatus(s))
	}
	return out
}

func FromDomainOrder(o *domain.Order) Order {
	items := make([]LineItem, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, LineItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Quantity:    line.Quantity,
			LineTotal:   line.Total().StringFixed(2),
		})
	}
	return Order{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      Status{ID: int(o.Status), Name: o.Status.String()},
		OrderedAt:   o.OrderedAt,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Delivery:    string(o.Delivery),
		Items:       items,
	}
}

func FromDomainOrders(list []*domain.Order) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

func FromCheckoutResult(result *ports.CheckoutResult) Checkout {
	out := Checkout{
		Order:    FromDomainOrder(result.Order),
		Balance:  result.Balance.StringFixed(2),
		Replayed: result.Replayed,
	}
	if result.Transaction != nil {
		txn := walletmapper.FromDomainTransaction(result.Transaction)
		out.Transaction = &txn
	}
	return out
}
