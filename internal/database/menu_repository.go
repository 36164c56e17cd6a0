package database

import (
	"context"
	"fmt"

	"foodiedelight/internal/models"
)

// MenuRepository reads menu_items
type MenuRepository struct {
	db Querier
}

func NewMenuRepository(db Querier) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListMenuItems returns every menu item ordered by category ascending
func (r *MenuRepository) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx, ListMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.Image,
			&item.Rating,
			&item.Category,
		); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read menu items: %w", err)
	}
	return items, nil
}
