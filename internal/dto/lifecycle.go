package dto

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "tablepos/internal/errors"
)

// CreateResult identifies what a cart submission produced: a ticket for
// dine-in carts, an order for takeaway carts.
type CreateResult struct {
	TicketID *uint  `json:"ticketId,omitempty"`
	OrderID  *uint  `json:"orderId,omitempty"`
	Number   string `json:"number"`
	Reused   bool   `json:"reusedHeldOrder,omitempty"`
}

type HoldResult struct {
	OrderID uint   `json:"orderId"`
	Number  string `json:"number"`
}

type TransitionResult struct {
	TicketID    uint    `json:"ticketId"`
	Status      string  `json:"status"`
	OrderID     *uint   `json:"orderId,omitempty"`
	OrderNumber *string `json:"orderNumber,omitempty"`
	Promoted    bool    `json:"promoted"`
}

type PaymentResult struct {
	PaymentID     uint   `json:"paymentId"`
	OrderID       uint   `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

type LineItemDTO struct {
	MenuItemID int             `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"qty"`
	UnitPrice  decimal.Decimal `json:"price"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

type TicketDTO struct {
	ID        uint            `json:"id"`
	Number    string          `json:"number"`
	TableID   *int            `json:"tableId"`
	OrderType string          `json:"orderType"`
	Customer  CustomerDTO     `json:"customer"`
	Status    string          `json:"status"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Notes     string          `json:"notes"`
	Items     []LineItemDTO   `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type PaymentDTO struct {
	ID            uint            `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID *string         `json:"transactionId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderDTO struct {
	ID             uint            `json:"id"`
	Number         string          `json:"number"`
	TableID        *int            `json:"tableId"`
	SourceTicketID *uint           `json:"sourceTicketId,omitempty"`
	OrderType      string          `json:"orderType"`
	Customer       CustomerDTO     `json:"customer"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"paymentStatus"`
	PaymentMethod  string          `json:"paymentMethod"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	Notes          string          `json:"notes"`
	Items          []LineItemDTO   `json:"items"`
	Payments       []PaymentDTO    `json:"payments"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Response wraps every successful lifecycle reply.
type Response struct {
	TraceID   string      `json:"traceId"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}
