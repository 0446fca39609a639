package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-shop-server/internal/shared/money"
)

// StatusID enumerates order progression. Values match the static reference rows.
type StatusID int

const (
	StatusPending    StatusID = 1
	StatusProcessing StatusID = 2
	StatusCompleted  StatusID = 3
	StatusCancelled  StatusID = 4
)

// Status is a reference row.
type Status struct {
	ID   StatusID
	Name string
}

var statuses = []Status{
	{ID: StatusPending, Name: "Pending"},
	{ID: StatusProcessing, Name: "Processing"},
	{ID: StatusCompleted, Name: "Completed"},
	{ID: StatusCancelled, Name: "Cancelled"},
}

// Statuses returns the reference data in id order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

// LookupStatus resolves a status id.
func LookupStatus(id StatusID) (Status, bool) {
	for _, s := range statuses {
		if s.ID == id {
			return s, true
		}
	}
	return Status{}, false
}

func (s StatusID) String() string {
	if status, ok := LookupStatus(s); ok {
		return status.Name
	}
	return "Unknown"
}

// Terminal reports whether no further transitions are expected.
func (s StatusID) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DeliveryOption is how the order reaches the customer.
type DeliveryOption string

const (
	DeliveryPickUp  DeliveryOption = "pick-up"
	DeliveryDeliver DeliveryOption = "deliver"
)

// ParseDeliveryOption accepts the canonical values and a few spellings of them.
func ParseDeliveryOption(raw string) (DeliveryOption, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pick-up", "pickup", "pick_up":
		return DeliveryPickUp, nil
	case "deliver", "delivery":
		return DeliveryDeliver, nil
	default:
		return "", ErrInvalidDelivery
	}
}

var (
	ErrInvalidDelivery = errors.New("delivery option must be pick-up or deliver")
	ErrInvalidState    = errors.New("order cannot change from its current status")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrEmptyUserID     = errors.New("user id is required")
	ErrStatusNotFound  = errors.New("order status not found")
	// ErrNothingToPay rejects checkouts whose total is zero; the ledger only
	// records positive amounts.
	ErrNothingToPay = errors.New("order total must be greater than zero")
)

// LineItem is the frozen snapshot of a cart line at checkout.
type LineItem struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Total is the snapshot line total.
func (l LineItem) Total() decimal.Decimal {
	return money.Round(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Order is immutable after checkout except for its status.
type Order struct {
	ID          int64
	CartID      int64
	UserID      string
	Status      StatusID
	OrderedAt   time.Time
	TotalAmount decimal.Decimal
	Delivery    DeliveryOption
	Items       []LineItem
}

// NewOrder freezes a checkout into a Processing order.
func NewOrder(cartID int64, userID string, total decimal.Decimal, delivery DeliveryOption, items []LineItem, now time.Time) (*Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	if delivery != DeliveryPickUp && delivery != DeliveryDeliver {
		return nil, ErrInvalidDelivery
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !total.IsPositive() {
		return nil, ErrNothingToPay
	}
	return &Order{
		CartID:      cartID,
		UserID:      userID,
		Status:      StatusProcessing,
		OrderedAt:   now,
		TotalAmount: money.Round(total),
		Delivery:    delivery,
		Items:       append([]LineItem(nil), items...),
	}, nil
}

// Cancel moves a live order to Cancelled.
func (o *Order) Cancel() error {
	if o.Status.Terminal() {
		return ErrInvalidState
	}
	o.Status = StatusCancelled
	return nil
}

// ProductIDs lists the distinct products of the frozen lines in ascending order.
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, line := range o.Items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}
