package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching the menu_items/orders wire format.
	decimal.MarshalJSONWithoutQuotes = true
}

// MenuItem represents one orderable dish as stored in menu_items
type MenuItem struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
	Rating      float64         `json:"rating" db:"rating"`
	Category    string          `json:"category" db:"category"`
}
