package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/models"
	"foodiedelight/internal/services/cart"
	"foodiedelight/internal/services/order"
)

type staticCatalog []models.MenuItem

func (c staticCatalog) Items() []models.MenuItem { return append([]models.MenuItem(nil), c...) }

func (c staticCatalog) Lookup(id string) (models.MenuItem, bool) {
	for _, it := range c {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

type fakeStore struct {
	mu      sync.Mutex
	err     error
	orders  []*models.OrderRecord
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeStore) InsertOrder(ctx context.Context, o *models.OrderRecord) (*models.OrderRecord, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	stored := *o
	stored.ID = "a1b2c3d4-0000-4000-8000-000000000001"
	s.orders = append(s.orders, &stored)
	return &stored, nil
}

var testCatalog = staticCatalog{
	{ID: "1", Name: "A", Price: decimal.NewFromInt(10), Rating: 4.8},
	{ID: "2", Name: "B", Price: decimal.NewFromInt(5), Rating: 4.2},
}

func newSession(store order.Store) *Session {
	log := logger.NewWithWriter("session-test", io.Discard)
	return New("s1", testCatalog, order.NewSubmitter(store, nil, log), time.Now())
}

func TestSession_AddItemScenario(t *testing.T) {
	s := newSession(&fakeStore{})

	_, err := s.AddItem("1")
	require.NoError(t, err)
	view, err := s.AddItem("1")
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, "20", view.TotalPrice.String())
	assert.Equal(t, 2, view.TotalItems)
	assert.False(t, view.Submitting)
}

func TestSession_AddUnknownItem(t *testing.T) {
	s := newSession(&fakeStore{})

	_, err := s.AddItem("42")

	assert.ErrorIs(t, err, ErrUnknownItem)
	assert.Empty(t, s.View().Lines)
}

func TestSession_UpdateAndRecommend(t *testing.T) {
	s := newSession(&fakeStore{})
	_, _ = s.AddItem("1")
	_, _ = s.AddItem("1")
	assert.Empty(t, s.Recommendations())

	view, err := s.UpdateQuantity("1", 1)
	require.NoError(t, err)
	assert.Equal(t, "10", view.TotalPrice.String())

	view, err = s.UpdateQuantity("1", 0)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	recs := s.Recommendations()
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].ID)

	_, err = s.UpdateQuantity("1", -3)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestSession_RemoveAndReset(t *testing.T) {
	s := newSession(&fakeStore{})
	_, _ = s.AddItem("1")
	_, _ = s.AddItem("2")

	view := s.RemoveItem("1")
	assert.Len(t, view.Lines, 1)

	view = s.Reset()
	assert.Empty(t, view.Lines)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestSession_CheckoutClearsCart(t *testing.T) {
	store := &fakeStore{}
	s := newSession(store)
	_, _ = s.AddItem("1")
	_, _ = s.AddItem("2")

	rec, err := s.Checkout(context.Background(), models.ContactInfo{}, "req")
	require.NoError(t, err)

	assert.Equal(t, "15", rec.TotalAmount.String())
	assert.Empty(t, s.View().Lines)
	assert.Len(t, store.orders, 1)
}

func TestSession_CheckoutFailureKeepsCart(t *testing.T) {
	s := newSession(&fakeStore{err: errors.New("store unavailable")})
	_, _ = s.AddItem("1")

	_, err := s.Checkout(context.Background(), models.ContactInfo{}, "req")

	assert.ErrorIs(t, err, order.ErrSubmitFailed)
	assert.Equal(t, 1, s.View().TotalItems)
}

func TestSession_CheckoutEmptyCart(t *testing.T) {
	store := &fakeStore{}
	s := newSession(store)

	_, err := s.Checkout(context.Background(), models.ContactInfo{}, "req")

	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Empty(t, store.orders)
}

func TestSession_CartEditableDuringSubmission(t *testing.T) {
	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newSession(store)
	_, _ = s.AddItem("1")

	done := make(chan error, 1)
	go func() {
		_, err := s.Checkout(context.Background(), models.ContactInfo{}, "req")
		done <- err
	}()
	<-store.entered

	view, err := s.AddItem("2")
	require.NoError(t, err)
	assert.True(t, view.Submitting)
	assert.Len(t, view.Lines, 2)

	_, err = s.Checkout(context.Background(), models.ContactInfo{}, "again")
	assert.ErrorIs(t, err, order.ErrSubmissionInFlight)

	close(store.block)
	require.NoError(t, <-done)
	assert.False(t, s.View().Submitting)
	require.Len(t, store.orders, 1)
	assert.Len(t, store.orders[0].Items, 1, "order holds the cart as it was when submitted")
}
