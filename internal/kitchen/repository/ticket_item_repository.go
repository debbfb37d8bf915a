package repository

import (
	"context"
	"fmt"

	"tablepos/internal/domain"
	"tablepos/internal/infrastructure/mysql"
)

type MySQLTicketItemRepository struct{}

func NewMySQLTicketItemRepository() *MySQLTicketItemRepository {
	return &MySQLTicketItemRepository{}
}

func (r *MySQLTicketItemRepository) Insert(ctx context.Context, q mysql.DBTX, ticketID uint, item domain.LineItem) (uint, error) {
	query := `
		INSERT INTO TicketItems (ticketId, menuItemId, itemName, quantity, unitPrice, lineTotal)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query, ticketID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.LineTotal)
	if err != nil {
		return 0, fmt.Errorf("inserting ticket item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLTicketItemRepository) InsertAll(ctx context.Context, q mysql.DBTX, ticketID uint, items []domain.LineItem) error {
	for _, item := range items {
		if _, err := r.Insert(ctx, q, ticketID, item); err != nil {
			return err
		}
	}
	return nil
}

// FindByTicketID returns the lines in insertion order.
func (r *MySQLTicketItemRepository) FindByTicketID(ctx context.Context, q mysql.DBTX, ticketID uint) ([]domain.LineItem, error) {
	query := `
		SELECT id, ticketId, menuItemId, itemName, quantity, unitPrice, lineTotal
		FROM TicketItems
		WHERE ticketId = ?
		ORDER BY id
	`

	rows, err := q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("querying ticket items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.ParentID, &item.MenuItemID, &item.Name, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("scanning ticket item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ticket item rows: %w", err)
	}

	return items, nil
}
