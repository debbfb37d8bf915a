package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tablepos/internal/domain"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/infrastructure/mysql"
)

const ticketColumns = `
	id, restaurantId, ticketNumber, tableId, orderType,
	customerName, customerPhone, customerEmail, customerAddress,
	subtotal, tax, total, COALESCE(notes, ''), status, createdAt, updatedAt`

type MySQLTicketRepository struct {
	db    *sql.DB
	items *MySQLTicketItemRepository
}

func NewMySQLTicketRepository(db *sql.DB) *MySQLTicketRepository {
	return &MySQLTicketRepository{
		db:    db,
		items: NewMySQLTicketItemRepository(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.RestaurantID, &t.Number, &t.TableID, &t.OrderType,
		&t.Customer.Name, &t.Customer.Phone, &t.Customer.Email, &t.Customer.Address,
		&t.Subtotal, &t.Tax, &t.Total, &t.Notes, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert stores the ticket header and its lines and returns the new id.
func (r *MySQLTicketRepository) Insert(ctx context.Context, q mysql.DBTX, ticket *domain.Ticket) (uint, error) {
	query := `
		INSERT INTO Tickets (restaurantId, ticketNumber, tableId, orderType,
		                     customerName, customerPhone, customerEmail, customerAddress,
		                     subtotal, tax, total, notes, status, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query,
		ticket.RestaurantID, ticket.Number, ticket.TableID, ticket.OrderType,
		ticket.Customer.Name, ticket.Customer.Phone, ticket.Customer.Email, ticket.Customer.Address,
		ticket.Subtotal, ticket.Tax, ticket.Total, ticket.Notes, ticket.Status,
		ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting ticket: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	id := uint(lastInsertID)

	if err := r.items.InsertAll(ctx, q, id, ticket.Items); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *MySQLTicketRepository) FindByID(ctx context.Context, restaurantID int, id uint) (*domain.Ticket, error) {
	return r.find(ctx, r.db, restaurantID, id, false)
}

// FindByIDForUpdate loads the ticket and locks its row until the
// surrounding transaction ends. Promotion of one ticket is serialized on
// this lock.
func (r *MySQLTicketRepository) FindByIDForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, id uint) (*domain.Ticket, error) {
	return r.find(ctx, q, restaurantID, id, true)
}

func (r *MySQLTicketRepository) find(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, forUpdate bool) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM Tickets WHERE id = ? AND restaurantId = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	ticket, err := scanTicket(q.QueryRowContext(ctx, query, id, restaurantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("ticket with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying ticket by id: %w", err)
	}

	items, err := r.items.FindByTicketID(ctx, q, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Items = items

	return ticket, nil
}

func (r *MySQLTicketRepository) UpdateStatus(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.TicketStatus, at time.Time) error {
	query := `UPDATE Tickets SET status = ?, updatedAt = ? WHERE id = ? AND restaurantId = ?`

	result, err := q.ExecContext(ctx, query, status, at, id, restaurantID)
	if err != nil {
		return fmt.Errorf("updating ticket status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("ticket with id %d not found", id))
	}

	return nil
}

func (r *MySQLTicketRepository) NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM Tickets WHERE restaurantId = ? AND ticketNumber = ?)`

	var exists bool
	if err := q.QueryRowContext(ctx, query, restaurantID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking ticket number: %w", err)
	}

	return exists, nil
}
