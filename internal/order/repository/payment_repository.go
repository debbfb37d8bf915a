package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"tablepos/internal/domain"
	"tablepos/internal/infrastructure/mysql"
)

type MySQLPaymentRepository struct {
	db *sql.DB
}

func NewMySQLPaymentRepository(db *sql.DB) *MySQLPaymentRepository {
	return &MySQLPaymentRepository{db: db}
}

func (r *MySQLPaymentRepository) Insert(ctx context.Context, q mysql.DBTX, p domain.Payment) (uint, error) {
	query := `
		INSERT INTO Payments (restaurantId, orderId, amount, method, status, transactionId, notes, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query, p.RestaurantID, p.OrderID, p.Amount, p.Method, p.Status, p.TransactionID, p.Notes, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting payment: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// SumSuccessful totals the Success payments recorded against an order.
func (r *MySQLPaymentRepository) SumSuccessful(ctx context.Context, q mysql.DBTX, restaurantID int, orderID uint) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM Payments
		WHERE restaurantId = ? AND orderId = ? AND status = ?
	`

	var total decimal.Decimal
	if err := q.QueryRowContext(ctx, query, restaurantID, orderID, domain.PaymentRecordSuccess).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing payments: %w", err)
	}

	return total, nil
}

func (r *MySQLPaymentRepository) FindByOrderID(ctx context.Context, restaurantID int, orderID uint) ([]domain.Payment, error) {
	query := `
		SELECT id, restaurantId, orderId, amount, method, status, transactionId, COALESCE(notes, ''), createdAt
		FROM Payments
		WHERE restaurantId = ? AND orderId = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.RestaurantID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.TransactionID, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}
