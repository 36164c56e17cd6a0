package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
)

// ShortReferenceLen is how many characters of the order id are shown to customers
const ShortReferenceLen = 8

// OrderLine is the snapshot of a cart line stored inside an order
type OrderLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// Subtotal returns price times quantity
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ContactInfo is the optional customer contact attached to an order
type ContactInfo struct {
	Email *string `json:"customer_email,omitempty"`
	Phone *string `json:"customer_phone,omitempty"`
}

// OrderRecord represents an order as persisted in the orders table
type OrderRecord struct {
	ID            string          `json:"id" db:"id"`
	CustomerEmail *string         `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone *string         `json:"customer_phone,omitempty" db:"customer_phone"`
	Items         []OrderLine     `json:"items" db:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at,omitempty" db:"created_at"`
}

// ShortReference returns the customer-facing prefix of the order id
func (o *OrderRecord) ShortReference() string {
	if len(o.ID) <= ShortReferenceLen {
		return o.ID
	}
	return o.ID[:ShortReferenceLen]
}

// ItemCount returns the sum of quantities across all lines
func (o *OrderRecord) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
