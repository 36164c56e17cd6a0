package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"foodiedelight/internal/config"
	"foodiedelight/internal/logger"
)

const (
	OrdersExchange     = "orders_topic"
	NotificationsQueue = "order_notifications_queue"

	maxConnectAttempts = 5
	dialTimeout        = 5 * time.Second
)

// Binding routes messages from an exchange to a queue
type Binding struct {
	Queue      string
	RoutingKey string
	Exchange   string
}

// Topology is the set of exchanges, queues and bindings declared on connect
type Topology struct {
	Exchanges map[string]string // name -> kind
	Queues    []string
	Bindings  []Binding
}

// OrderTopology carries order events to the notification subscriber
func OrderTopology() Topology {
	return Topology{
		Exchanges: map[string]string{OrdersExchange: amqp091.ExchangeTopic},
		Queues:    []string{NotificationsQueue},
		Bindings: []Binding{
			{Queue: NotificationsQueue, RoutingKey: "order.*", Exchange: OrdersExchange},
		},
	}
}

// Connection wraps a RabbitMQ connection and its channel, redialing on demand
type Connection struct {
	url      string
	topology Topology
	logger   *logger.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// New dials RabbitMQ and declares the order topology
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		url:      cfg.RabbitMQURL(),
		topology: OrderTopology(),
		logger:   log,
	}

	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

// connect dials with a linear backoff. The lock is only held while a dial
// attempt runs, never across the waits.
func (c *Connection) connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		if err = c.dialOnce(); err == nil {
			return nil
		}

		if attempt == maxConnectAttempts {
			break
		}

		wait := time.Duration(attempt) * 2 * time.Second
		c.logger.Error("rabbitmq_connection_failed",
			fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
			"startup", err, map[string]interface{}{"attempt": attempt})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxConnectAttempts, err)
}

// dialOnce replaces the current connection with a freshly dialed one
func (c *Connection) dialOnce() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	return c.dialLocked()
}

func (c *Connection) dialLocked() error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := declare(ch, c.topology); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.conn = conn
	c.channel = ch
	return nil
}

func declare(ch *amqp091.Channel, t Topology) error {
	for name, kind := range t.Exchanges {
		if err := ch.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}

	for _, q := range t.Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q, err)
		}
	}

	for _, b := range t.Bindings {
		if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s with routing key %s: %w", b.Queue, b.RoutingKey, err)
		}
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// IsClosed reports whether the connection or its channel has gone away
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed()
}

// Reconnect drops the current connection and dials again with backoff
func (c *Connection) Reconnect(ctx context.Context) error {
	return c.connect(ctx)
}

// ReconnectOnce makes a single dial attempt without waiting
func (c *Connection) ReconnectOnce() error {
	return c.dialOnce()
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && err != amqp091.ErrClosed {
			return err
		}
	}
	return nil
}
