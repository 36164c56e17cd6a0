package order

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/models"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrSubmitFailed       = errors.New("failed to submit order")
)

// Store persists orders and returns them with server-assigned fields filled in
type Store interface {
	InsertOrder(ctx context.Context, order *models.OrderRecord) (*models.OrderRecord, error)
}

// Notifier announces stored orders
type Notifier interface {
	PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error
}

// Cart is what the submitter needs from the cart being checked out.
// Snapshot and Reset must be safe to call while other goroutines edit the cart.
type Cart interface {
	Snapshot() []models.OrderLine
	Reset()
}

// Submitter turns a cart into a stored order. Only one submission runs at
// a time per Submitter; a second call while one is in flight fails fast.
type Submitter struct {
	store    Store
	notifier Notifier
	logger   *logger.Logger

	submitting atomic.Bool
}

// NewSubmitter creates a submitter. notifier may be nil.
func NewSubmitter(store Store, notifier Notifier, log *logger.Logger) *Submitter {
	return &Submitter{
		store:    store,
		notifier: notifier,
		logger:   log,
	}
}

// Submitting reports whether a submission is in flight
func (s *Submitter) Submitting() bool {
	return s.submitting.Load()
}

// Submit stores an order built from the cart and contact info, then clears
// the cart. An empty cart is rejected without touching the store. On
// failure the cart is left as it was so the customer can retry.
func (s *Submitter) Submit(ctx context.Context, contact models.ContactInfo, cart Cart, requestID string) (*models.OrderRecord, error) {
	lines := cart.Snapshot()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	contact, err := NormalizeContact(contact)
	if err != nil {
		return nil, err
	}

	stored, err := s.persist(ctx, contact, lines, cart, requestID)
	if err != nil {
		return nil, err
	}

	// The guard is already released, so a slow broker never blocks the next checkout.
	if s.notifier != nil {
		if err := s.notifier.PublishOrderPlaced(ctx, models.CreateOrderPlacedMessage(stored)); err != nil {
			s.logger.Error("order_publish_failed", "Failed to publish order placed event", requestID, err, map[string]interface{}{
				"order_id": stored.ID,
			})
		}
	}

	return stored, nil
}

// persist writes the order under the in-flight guard and clears the cart on success
func (s *Submitter) persist(ctx context.Context, contact models.ContactInfo, lines []models.OrderLine, cart Cart, requestID string) (*models.OrderRecord, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.submitting.Store(false)

	order := &models.OrderRecord{
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		Items:         lines,
		TotalAmount:   Total(lines),
		Status:        models.StatusPending,
	}

	stored, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		s.logger.Error("order_submit_failed", "Failed to submit order", requestID, err, map[string]interface{}{
			"lines":        len(lines),
			"total_amount": order.TotalAmount.StringFixed(2),
		})
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	cart.Reset()

	s.logger.Info("order_submitted", fmt.Sprintf("Order #%s has been placed", stored.ShortReference()), requestID, map[string]interface{}{
		"order_id":     stored.ID,
		"items":        stored.ItemCount(),
		"total_amount": stored.TotalAmount.StringFixed(2),
	})

	return stored, nil
}

// Total returns the sum of price times quantity over lines
func Total(lines []models.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
