package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"foodiedelight/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository writes and reads the orders table
type OrderRepository struct {
	db Querier
}

func NewOrderRepository(db Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// InsertOrder stores the order and returns a copy carrying the generated
// id, status and creation time.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *models.OrderRecord) (*models.OrderRecord, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	status := order.Status
	if status == "" {
		status = models.StatusPending
	}

	stored := *order
	stored.Items = append([]models.OrderLine(nil), order.Items...)

	err = r.db.QueryRow(ctx, InsertOrderSQL,
		order.CustomerEmail,
		order.CustomerPhone,
		items,
		order.TotalAmount,
		string(status),
	).Scan(&stored.ID, &stored.Status, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &stored, nil
}

// GetOrder loads an order by its full id
func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*models.OrderRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}

	var (
		order models.OrderRecord
		items []byte
	)
	err := r.db.QueryRow(ctx, GetOrderByIDSQL, id).Scan(
		&order.ID,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&items,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	return &order, nil
}
