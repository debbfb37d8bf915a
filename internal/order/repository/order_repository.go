package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tablepos/internal/domain"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/infrastructure/mysql"
)

const orderColumns = `
	id, restaurantId, orderNumber, tableId, sourceTicketId, orderType,
	customerName, customerPhone, customerEmail, customerAddress,
	orderStatus, paymentStatus, paymentMethod,
	subtotal, tax, total, COALESCE(notes, ''), createdAt, updatedAt`

type MySQLOrderRepository struct {
	db    *sql.DB
	items *MySQLOrderItemRepository
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{
		db:    db,
		items: NewMySQLOrderItemRepository(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.Number, &o.TableID, &o.SourceTicketID, &o.OrderType,
		&o.Customer.Name, &o.Customer.Phone, &o.Customer.Email, &o.Customer.Address,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.Subtotal, &o.Tax, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, q mysql.DBTX, order *domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (restaurantId, orderNumber, tableId, sourceTicketId, orderType,
		                    customerName, customerPhone, customerEmail, customerAddress,
		                    orderStatus, paymentStatus, paymentMethod,
		                    subtotal, tax, total, notes, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query,
		order.RestaurantID, order.Number, order.TableID, order.SourceTicketID, order.OrderType,
		order.Customer.Name, order.Customer.Phone, order.Customer.Email, order.Customer.Address,
		order.Status, order.PaymentStatus, order.PaymentMethod,
		order.Subtotal, order.Tax, order.Total, order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	id := uint(lastInsertID)

	if err := r.items.InsertAll(ctx, q, id, order.Items); err != nil {
		return 0, err
	}

	return id, nil
}

// Overwrite replaces every mutable field of a held order and its lines.
// The order number and creation time are kept.
func (r *MySQLOrderRepository) Overwrite(ctx context.Context, q mysql.DBTX, order *domain.Order) error {
	query := `
		UPDATE Orders
		SET tableId = ?, orderType = ?,
		    customerName = ?, customerPhone = ?, customerEmail = ?, customerAddress = ?,
		    orderStatus = ?, paymentStatus = ?, paymentMethod = ?,
		    subtotal = ?, tax = ?, total = ?, notes = ?, updatedAt = ?
		WHERE id = ? AND restaurantId = ?
	`

	result, err := q.ExecContext(ctx, query,
		order.TableID, order.OrderType,
		order.Customer.Name, order.Customer.Phone, order.Customer.Email, order.Customer.Address,
		order.Status, order.PaymentStatus, order.PaymentMethod,
		order.Subtotal, order.Tax, order.Total, order.Notes, order.UpdatedAt,
		order.ID, order.RestaurantID,
	)
	if err != nil {
		return fmt.Errorf("overwriting order: %w", err)
	}

	if err := requireAffected(result, order.ID); err != nil {
		return err
	}

	return r.items.ReplaceAll(ctx, q, order.ID, order.Items)
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, restaurantID int, id uint) (*domain.Order, error) {
	return r.findOne(ctx, r.db, restaurantID, id, false)
}

func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, id uint) (*domain.Order, error) {
	return r.findOne(ctx, q, restaurantID, id, true)
}

func (r *MySQLOrderRepository) findOne(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, forUpdate bool) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ? AND restaurantId = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(q.QueryRowContext(ctx, query, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	if err := r.loadItems(ctx, q, order); err != nil {
		return nil, err
	}

	return order, nil
}

// FindBySourceTicket returns the order promoted from the ticket, or nil.
func (r *MySQLOrderRepository) FindBySourceTicket(ctx context.Context, q mysql.DBTX, restaurantID int, ticketID uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE restaurantId = ? AND sourceTicketId = ?`

	order, err := scanOrder(q.QueryRowContext(ctx, query, restaurantID, ticketID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by source ticket: %w", err)
	}

	return order, nil
}

// FindLegacyCandidates returns unlinked orders satisfying the fuzzy match
// criteria, lowest id first.
func (r *MySQLOrderRepository) FindLegacyCandidates(ctx context.Context, q mysql.DBTX, c domain.MatchCriteria) ([]domain.Order, error) {
	if len(c.Statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(c.Statuses))
	args := []interface{}{
		c.RestaurantID, c.TableID,
		c.Total, c.Tolerance,
		c.Subtotal, c.Tolerance,
		c.Tax, c.Tolerance,
		c.From, c.To,
	}
	for i, s := range c.Statuses {
		placeholders[i] = "?"
		args = append(args, s)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM Orders
		WHERE restaurantId = ?
		  AND tableId <=> ?
		  AND sourceTicketId IS NULL
		  AND ABS(total - ?) <= ?
		  AND ABS(subtotal - ?) <= ?
		  AND ABS(tax - ?) <= ?
		  AND createdAt BETWEEN ? AND ?
		  AND orderStatus IN (%s)
		ORDER BY id`,
		orderColumns, strings.Join(placeholders, ", "),
	)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reconciliation candidates: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

// FindHeldForUpdate locks the oldest held order for the table, or returns
// nil when there is none.
func (r *MySQLOrderRepository) FindHeldForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, tableID *int) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM Orders
		WHERE restaurantId = ? AND tableId <=> ?
		  AND paymentStatus = ? AND orderStatus = ?
		ORDER BY id
		LIMIT 1
		FOR UPDATE`

	order, err := scanOrder(q.QueryRowContext(ctx, query, restaurantID, tableID, domain.PaymentStatusPending, domain.OrderStatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying held order: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.OrderStatus, at time.Time) error {
	query := `UPDATE Orders SET orderStatus = ?, updatedAt = ? WHERE id = ? AND restaurantId = ?`

	result, err := q.ExecContext(ctx, query, status, at, id, restaurantID)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return requireAffected(result, id)
}

func (r *MySQLOrderRepository) UpdatePayment(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.PaymentStatus, method string, at time.Time) error {
	query := `UPDATE Orders SET paymentStatus = ?, paymentMethod = ?, updatedAt = ? WHERE id = ? AND restaurantId = ?`

	result, err := q.ExecContext(ctx, query, status, method, at, id, restaurantID)
	if err != nil {
		return fmt.Errorf("updating order payment: %w", err)
	}

	return requireAffected(result, id)
}

func (r *MySQLOrderRepository) NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM Orders WHERE restaurantId = ? AND orderNumber = ?)`

	var exists bool
	if err := q.QueryRowContext(ctx, query, restaurantID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking order number: %w", err)
	}

	return exists, nil
}

func (r *MySQLOrderRepository) loadItems(ctx context.Context, q mysql.DBTX, order *domain.Order) error {
	items, err := r.items.FindByOrderID(ctx, q, order.ID)
	if err != nil {
		return err
	}
	order.Items = items
	return nil
}

func requireAffected(result sql.Result, id uint) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}
