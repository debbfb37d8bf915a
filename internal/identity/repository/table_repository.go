package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "tablepos/internal/errors"
)

type MySQLTableRepository struct {
	db *sql.DB
}

func NewMySQLTableRepository(db *sql.DB) *MySQLTableRepository {
	return &MySQLTableRepository{db: db}
}

// VerifyTable returns a NotFoundError unless the table exists, is not
// deleted and belongs to the restaurant.
func (r *MySQLTableRepository) VerifyTable(ctx context.Context, restaurantID int, tableID int) error {
	query := `
		SELECT id
		FROM RestaurantTables
		WHERE id = ? AND restaurantId = ? AND isDeleted = 0
	`

	var id int
	err := r.db.QueryRowContext(ctx, query, tableID, restaurantID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(fmt.Sprintf("table %d not found for restaurant %d", tableID, restaurantID))
	}
	if err != nil {
		return fmt.Errorf("querying restaurant table: %w", err)
	}

	return nil
}
