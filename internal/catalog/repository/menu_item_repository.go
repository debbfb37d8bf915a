package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tablepos/internal/domain"
)

type MySQLMenuItemRepository struct {
	db *sql.DB
}

func NewMySQLMenuItemRepository(db *sql.DB) *MySQLMenuItemRepository {
	return &MySQLMenuItemRepository{db: db}
}

// FindByIDs returns the restaurant's non-deleted menu items among ids,
// ordered by id. Inactive items are included.
func (r *MySQLMenuItemRepository) FindByIDs(ctx context.Context, restaurantID int, ids []int) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, restaurantID)

	query := fmt.Sprintf(`
		SELECT id, restaurantId, name, COALESCE(description, ''), price, category,
		       isActive, isDeleted, createdAt, updatedAt
		FROM MenuItems
		WHERE id IN (%s)
		  AND restaurantId = ?
		  AND isDeleted = 0
		ORDER BY id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		err := rows.Scan(
			&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Category,
			&m.IsActive, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}

	return items, nil
}
