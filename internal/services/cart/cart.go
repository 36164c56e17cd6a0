package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"foodiedelight/internal/models"
)

var ErrInvalidQuantity = errors.New("cart: quantity must not be negative")

// Line is one menu item in the cart together with how many were added.
// Quantity is at least 1 while the line is present.
type Line struct {
	models.MenuItem
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines with unique item ids.
// It is not safe for concurrent use; owners serialize access.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{lines: []Line{}}
}

// Add increments the quantity of item, appending a new line with quantity 1
// when the item is not in the cart yet.
func (c *Cart) Add(item models.MenuItem) {
	if idx := c.index(item.ID); idx >= 0 {
		c.lines[idx].Quantity++
		return
	}
	c.lines = append(c.lines, Line{MenuItem: item, Quantity: 1})
}

// UpdateQuantity sets the quantity of the line with the given id.
// Zero removes the line. Unknown ids are ignored and never create a line.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	idx := c.index(id)
	if idx < 0 {
		return nil
	}

	if quantity == 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	}

	c.lines[idx].Quantity = quantity
	return nil
}

// Remove drops the line with the given id, if any
func (c *Cart) Remove(id string) {
	_ = c.UpdateQuantity(id, 0)
}

func (c *Cart) Reset() {
	c.lines = []Line{}
}

// TotalPrice returns the sum of price times quantity over all lines
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// TotalItemCount returns the sum of quantities over all lines
func (c *Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Contains(id string) bool { return c.index(id) >= 0 }

// Quantity returns the quantity for id, or 0 when absent
func (c *Cart) Quantity(id string) int {
	if idx := c.index(id); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

// Snapshot converts the lines into the form stored with an order
func (c *Cart) Snapshot() []models.OrderLine {
	out := make([]models.OrderLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, models.OrderLine{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Image:    l.Image,
		})
	}
	return out
}

func (c *Cart) index(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}
