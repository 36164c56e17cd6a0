package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/models"
)

var (
	ErrFetchFailed    = errors.New("failed to fetch menu items")
	ErrAlreadyStarted = errors.New("catalog reader already started")
)

// Store reads the full menu ordered by category ascending
type Store interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// Subscription delivers one signal per batch of menu changes.
// Changes is closed once the subscription ends.
type Subscription interface {
	Changes() <-chan struct{}
	Close() error
}

// ChangeSource opens subscriptions to menu change notifications
type ChangeSource interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// State is a point-in-time view of the reader
type State struct {
	Items   []models.MenuItem `json:"items"`
	Loading bool              `json:"loading"`
	Error   string            `json:"error,omitempty"`
}

const (
	resubscribeDelay    = time.Second
	maxResubscribeDelay = 30 * time.Second
)

// Reader keeps a local copy of the menu fresh. A failed fetch keeps the
// previous items and records a displayable message.
type Reader struct {
	store  Store
	source ChangeSource
	logger *logger.Logger

	// retryDelay is the first wait before resubscribing after a dropped
	// subscription; it doubles up to maxResubscribeDelay.
	retryDelay time.Duration

	mu         sync.RWMutex
	items      []models.MenuItem
	loading    int
	lastErr    string
	stopped    bool
	generation uint64 // fetches started; only the latest applies

	lifecycle sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeErr  error
}

func NewReader(store Store, source ChangeSource, log *logger.Logger) *Reader {
	return &Reader{
		store:      store,
		source:     source,
		logger:     log,
		retryDelay: resubscribeDelay,
		items:      []models.MenuItem{},
	}
}

// Refresh fetches the menu and replaces the local copy on success. When
// fetches overlap, only the most recently started one updates the state.
func (r *Reader) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.loading++
	r.generation++
	gen := r.generation
	r.lastErr = ""
	r.mu.Unlock()

	items, err := r.store.ListMenuItems(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading--

	var fetchErr error
	if err != nil {
		fetchErr = fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if r.stopped || gen != r.generation {
		return fetchErr
	}

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = ErrFetchFailed.Error()
		}
		r.lastErr = msg
		return fetchErr
	}

	if items == nil {
		items = []models.MenuItem{}
	}
	r.items = items
	return nil
}

// Start performs the initial fetch and subscribes to change notifications.
// Each notification triggers a Refresh until Stop is called. A failing
// initial fetch is logged and does not prevent the subscription. A
// subscription that ends on its own is reopened with backoff.
func (r *Reader) Start(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if r.running {
		return ErrAlreadyStarted
	}

	r.mu.Lock()
	r.stopped = false
	r.mu.Unlock()

	requestID := logger.GenerateRequestID()

	if err := r.Refresh(ctx); err != nil {
		r.logger.Error("menu_fetch_failed", "Initial menu fetch failed", requestID, err, nil)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	sub, err := r.source.Subscribe(loopCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to menu changes: %w", err)
	}

	r.running = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.closeErr = nil

	go r.watch(loopCtx, sub, r.done)

	r.logger.Info("menu_subscription_started", "Subscribed to menu changes", requestID, map[string]interface{}{
		"items": len(r.Items()),
	})
	return nil
}

// watch owns sub until ctx ends and closes whichever subscription is
// current on the way out.
func (r *Reader) watch(ctx context.Context, sub Subscription, done chan struct{}) {
	defer close(done)
	defer func() {
		r.closeErr = sub.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Changes():
			requestID := logger.GenerateRequestID()

			if !ok {
				r.logger.Warn("menu_subscription_lost", "Menu change subscription ended, resubscribing", requestID, nil)
				_ = sub.Close()

				next := r.resubscribe(ctx, requestID)
				if next == nil {
					sub = noSubscription{}
					return
				}
				sub = next
				r.logger.Info("menu_subscription_started", "Resubscribed to menu changes", requestID, nil)
			} else {
				r.logger.Debug("menu_changed", "Menu items updated, refetching", requestID, nil)
			}

			// After a resubscribe this also picks up changes missed while disconnected.
			if err := r.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("menu_fetch_failed", "Failed to refetch menu", requestID, err, nil)
			}
		}
	}
}

// resubscribe retries Subscribe with exponential backoff. It returns nil
// once ctx is done.
func (r *Reader) resubscribe(ctx context.Context, requestID string) Subscription {
	delay := r.retryDelay
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		sub, err := r.source.Subscribe(ctx)
		if err == nil {
			return sub
		}
		if ctx.Err() != nil {
			return nil
		}

		r.logger.Error("menu_resubscribe_failed", "Failed to resubscribe to menu changes", requestID, err, map[string]interface{}{
			"attempt": attempt,
		})
		delay *= 2
		if delay > maxResubscribeDelay {
			delay = maxResubscribeDelay
		}
	}
}

// Stop releases the subscription and waits for the refetch loop to exit.
// Calling Stop on a reader that is not started is a no-op.
func (r *Reader) Stop() error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if !r.running {
		return nil
	}

	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	<-r.done
	err := r.closeErr

	r.running = false
	r.cancel = nil
	r.done = nil

	if err != nil {
		return fmt.Errorf("close menu subscription: %w", err)
	}
	return nil
}

// noSubscription stands in after the watch loop gave up on resubscribing
type noSubscription struct{}

func (noSubscription) Changes() <-chan struct{} { return nil }
func (noSubscription) Close() error             { return nil }

// Items returns a copy of the current menu
func (r *Reader) Items() []models.MenuItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.MenuItem, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Reader) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading > 0
}

// Err returns the message of the last failed fetch, or "" when none
func (r *Reader) Err() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Reader) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]models.MenuItem, len(r.items))
	copy(items, r.items)
	return State{Items: items, Loading: r.loading > 0, Error: r.lastErr}
}

// Lookup finds a menu item by id in the current copy
func (r *Reader) Lookup(id string) (models.MenuItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}
