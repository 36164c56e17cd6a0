package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/messaging"
	"foodiedelight/internal/models"
)

// Consumer feeds message bodies to a handler until ctx ends
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints a line for every placed order
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
}

func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes order events until ctx is cancelled, then closes the consumer
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleOrderPlaced)

	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}
	s.logger.Info("graceful_shutdown", "Notification subscriber stopped", requestID, nil)

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	return nil
}

func (s *Subscriber) handleOrderPlaced(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.OrderPlacedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse order placed message", requestID, err, nil)
		return fmt.Errorf("%w: %w", messaging.ErrMalformed, err)
	}

	if _, err := fmt.Fprintln(s.out, formatNotification(&msg)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Order notification displayed", requestID, map[string]interface{}{
		"order_id":     msg.OrderID,
		"item_count":   msg.ItemCount,
		"total_amount": msg.TotalAmount.StringFixed(2),
	})
	return nil
}

func formatNotification(msg *models.OrderPlacedMessage) string {
	ref := msg.ShortReference
	if ref == "" {
		ref = (&models.OrderRecord{ID: msg.OrderID}).ShortReference()
	}

	line := fmt.Sprintf("🧾 [%s] Order #%s placed: %d %s, total $%s",
		msg.Timestamp.Format("2006-01-02 15:04:05"),
		ref,
		msg.ItemCount,
		pluralize(msg.ItemCount, "item", "items"),
		msg.TotalAmount.StringFixed(2),
	)
	if msg.CustomerEmail != nil {
		line += fmt.Sprintf(" (confirmation to %s)", *msg.CustomerEmail)
	}
	return line
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
