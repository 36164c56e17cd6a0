package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/services/catalog"
)

// MenuChangesChannel is the NOTIFY channel fired by the menu_items trigger
// in migrations/001_schema.sql. Both must change together.
const MenuChangesChannel = "menu_items_changes"

// MenuListener turns notifications on MenuChangesChannel into menu change
// signals. Each subscription holds one pooled connection.
type MenuListener struct {
	pool    *pgxpool.Pool
	channel string
	logger  *logger.Logger
}

func NewMenuListener(db *DB) *MenuListener {
	return &MenuListener{
		pool:    db.Pool,
		channel: MenuChangesChannel,
		logger:  db.logger,
	}
}

// Subscribe issues LISTEN on a dedicated connection and starts forwarding
// notifications until Close is called or ctx is done.
func (l *MenuListener) Subscribe(ctx context.Context) (catalog.Subscription, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	sub := &listenSubscription{
		conn:    conn,
		channel: l.channel,
		logger:  l.logger,
		changes: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go sub.run(loopCtx)

	return sub, nil
}

type listenSubscription struct {
	conn    *pgxpool.Conn
	channel string
	logger  *logger.Logger

	changes chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

func (s *listenSubscription) Changes() <-chan struct{} {
	return s.changes
}

func (s *listenSubscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.changes)

	for {
		n, err := s.conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error("menu_listen_failed", "Stopped receiving menu notifications", "", err, map[string]interface{}{
					"channel": s.channel,
				})
			}
			return
		}

		s.logger.Debug("menu_notification", "Received menu change notification", "", map[string]interface{}{
			"channel": n.Channel,
			"payload": n.Payload,
		})

		// Pending signal already covers this change.
		select {
		case s.changes <- struct{}{}:
		default:
		}
	}
}

// Close stops the forwarding loop. The connection is destroyed rather than
// returned to the pool since it may still be subscribed.
func (s *listenSubscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		conn := s.conn.Hijack()
		closeCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		_ = conn.Close(closeCtx)
	})
	return nil
}
