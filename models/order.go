package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceDineIn   ServiceType = "dine-in"
	ServicePickup   ServiceType = "pickup"
	ServiceDelivery ServiceType = "delivery"
)

func (s ServiceType) IsValid() bool {
	return s == ServiceDineIn || s == ServicePickup || s == ServiceDelivery
}

// Label capitalises the first letter: "dine-in" becomes "Dine-in".
func (s ServiceType) Label() string {
	if s == "" {
		return ""
	}
	b := []byte(string(s))
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Message is the line shown to a customer tracking the order.
func (s OrderStatus) Message() string {
	switch s {
	case StatusPending:
		return "Your order is pending confirmation."
	case StatusConfirmed:
		return "Your order has been confirmed!"
	case StatusPreparing:
		return "Your order is being prepared."
	case StatusReady:
		return "Your order is ready for pickup/delivery!"
	case StatusCompleted:
		return "Your order has been completed. Thank you!"
	case StatusCancelled:
		return "Your order has been cancelled."
	default:
		return "Processing your order..."
	}
}

type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	ContactNumber   string          `db:"contact_number" json:"contact_number"`
	ServiceType     ServiceType     `db:"service_type" json:"service_type"`
	Address         string          `db:"address" json:"address,omitempty"`
	PickupTime      string          `db:"pickup_time" json:"pickup_time,omitempty"`
	PartySize       int             `db:"party_size" json:"party_size,omitempty"`
	DineInTime      string          `db:"dine_in_time" json:"dine_in_time,omitempty"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	Total           decimal.Decimal `db:"total" json:"total"`
	Status          OrderStatus     `db:"status" json:"status"`
	ReceiptURL      string          `db:"receipt_url" json:"receipt_url,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	Items           []OrderItem     `db:"-" json:"order_items"`
}

// ShortID is the trailing 8 characters customers use to refer to an order.
func (o *Order) ShortID() string {
	s := o.ID.String()
	return s[len(s)-8:]
}

// ItemsTotal sums the item subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

type OrderItem struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	OrderID    uuid.UUID       `db:"order_id" json:"order_id"`
	MenuItemID uuid.UUID       `db:"item_id" json:"item_id"`
	Name       string          `db:"name" json:"name"`
	Variation  *ItemVariation  `db:"variation" json:"variation,omitempty"`
	AddOns     ItemAddOns      `db:"add_ons" json:"add_ons,omitempty"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity   int             `db:"quantity" json:"quantity"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
}

type ItemVariation struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price"`
}

func (v *ItemVariation) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func (v *ItemVariation) Scan(src any) error {
	return scanJSON(src, v)
}

type ItemAddOn struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// ItemAddOns is stored as a jsonb array.
type ItemAddOns []ItemAddOn

func (a ItemAddOns) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *ItemAddOns) Scan(src any) error {
	return scanJSON(src, a)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
}

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrMissingIdentifiers = errors.New("missing identifiers")

	ErrMenuItemNotFound      = errors.New("menu item not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
)

// StockError reports the first cart item the kitchen cannot cover.
type StockError struct {
	Item      string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d left", e.Item, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
