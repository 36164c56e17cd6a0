package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"foodiedelight/internal/models"
	"foodiedelight/internal/services/cart"
	"foodiedelight/internal/services/order"
	"foodiedelight/internal/services/recommendation"
)

var ErrUnknownItem = errors.New("menu item not found")

// Catalog is the read side of the menu a session adds items from
type Catalog interface {
	Items() []models.MenuItem
	Lookup(id string) (models.MenuItem, bool)
}

// CartView is the cart as shown to the customer
type CartView struct {
	Lines      []cart.Line     `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TotalItems int             `json:"total_items"`
	Submitting bool            `json:"submitting"`
}

// Session owns one customer's cart and order submitter
type Session struct {
	ID string

	catalog   Catalog
	submitter *order.Submitter

	mu       sync.Mutex
	cart     *cart.Cart
	lastSeen time.Time
}

func New(id string, catalog Catalog, submitter *order.Submitter, now time.Time) *Session {
	return &Session{
		ID:        id,
		catalog:   catalog,
		submitter: submitter,
		cart:      cart.New(),
		lastSeen:  now,
	}
}

// AddItem adds one unit of the menu item with the given id
func (s *Session) AddItem(id string) (CartView, error) {
	item, ok := s.catalog.Lookup(id)
	if !ok {
		return CartView{}, ErrUnknownItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(item)
	return s.viewLocked(), nil
}

func (s *Session) UpdateQuantity(id string, quantity int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.UpdateQuantity(id, quantity); err != nil {
		return CartView{}, err
	}
	return s.viewLocked(), nil
}

func (s *Session) RemoveItem(id string) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(id)
	return s.viewLocked()
}

// Reset empties the cart
func (s *Session) Reset() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Reset()
	return s.viewLocked()
}

func (s *Session) View() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() CartView {
	return CartView{
		Lines:      s.cart.Lines(),
		TotalPrice: s.cart.TotalPrice(),
		TotalItems: s.cart.TotalItemCount(),
		Submitting: s.submitter.Submitting(),
	}
}

// Recommendations returns suggested items for the current cart
func (s *Session) Recommendations() []models.MenuItem {
	items := s.catalog.Items()

	s.mu.Lock()
	defer s.mu.Unlock()
	return recommendation.Recommend(items, s.cart)
}

// Checkout submits the cart as an order. The cart stays editable while the
// store write is in flight.
func (s *Session) Checkout(ctx context.Context, contact models.ContactInfo, requestID string) (*models.OrderRecord, error) {
	return s.submitter.Submit(ctx, contact, lockedCart{s}, requestID)
}

// Touch records activity at now
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// lockedCart gives the submitter mutex-guarded access to the session cart
type lockedCart struct {
	s *Session
}

func (c lockedCart) Snapshot() []models.OrderLine {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.cart.Snapshot()
}

func (c lockedCart) Reset() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.cart.Reset()
}
