package repository

import (
	"context"
	"fmt"

	"tablepos/internal/domain"
	"tablepos/internal/infrastructure/mysql"
)

type MySQLOrderItemRepository struct{}

func NewMySQLOrderItemRepository() *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, q mysql.DBTX, orderID uint, item domain.LineItem) (uint, error) {
	query := `
		INSERT INTO OrderItems (orderId, menuItemId, itemName, quantity, unitPrice, lineTotal)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query, orderID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.LineTotal)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLOrderItemRepository) InsertAll(ctx context.Context, q mysql.DBTX, orderID uint, items []domain.LineItem) error {
	for _, item := range items {
		if _, err := r.Insert(ctx, q, orderID, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLOrderItemRepository) ReplaceAll(ctx context.Context, q mysql.DBTX, orderID uint, items []domain.LineItem) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM OrderItems WHERE orderId = ?`, orderID); err != nil {
		return fmt.Errorf("deleting order items: %w", err)
	}
	return r.InsertAll(ctx, q, orderID, items)
}

func (r *MySQLOrderItemRepository) FindByOrderID(ctx context.Context, q mysql.DBTX, orderID uint) ([]domain.LineItem, error) {
	query := `
		SELECT id, orderId, menuItemId, itemName, quantity, unitPrice, lineTotal
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id
	`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.ParentID, &item.MenuItemID, &item.Name, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}
