package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/services/order"
)

// Manager tracks live sessions and evicts idle ones
type Manager struct {
	catalog  Catalog
	store    order.Store
	notifier order.Notifier
	logger   *logger.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(catalog Catalog, store order.Store, notifier order.Notifier, log *logger.Logger, ttl time.Duration) *Manager {
	return &Manager{
		catalog:  catalog,
		store:    store,
		notifier: notifier,
		logger:   log,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with an empty cart
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := New(id, m.catalog, order.NewSubmitter(m.store, m.notifier, m.logger), m.now())

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with id and marks it active
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.Touch(m.now())
	return s, true
}

// GetOrCreate returns the session with id, or a new one when id is unknown
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl && !s.submitter.Submitting() {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps on every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("sessions_evicted", "Evicted idle sessions", "", map[string]interface{}{
					"evicted": n,
					"active":  m.Len(),
				})
			}
		}
	}
}
