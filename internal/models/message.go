package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedMessage is published once an order has been stored
type OrderPlacedMessage struct {
	OrderID        string          `json:"order_id"`
	ShortReference string          `json:"short_reference"`
	ItemCount      int             `json:"item_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CustomerEmail  *string         `json:"customer_email,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// CreateOrderPlacedMessage builds the event for a persisted order
func CreateOrderPlacedMessage(order *OrderRecord) *OrderPlacedMessage {
	return &OrderPlacedMessage{
		OrderID:        order.ID,
		ShortReference: order.ShortReference(),
		ItemCount:      order.ItemCount(),
		TotalAmount:    order.TotalAmount,
		CustomerEmail:  order.CustomerEmail,
		Timestamp:      time.Now().UTC(),
	}
}

// OrderPlacedRoutingKey is the routing key used for order.placed events
const OrderPlacedRoutingKey = "order.placed"
