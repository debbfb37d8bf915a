package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventTicketCreated       = "ticket.created"
	EventTicketStatusChanged = "ticket.status_changed"
	EventOrderCreated        = "order.created"
	EventOrderPromoted       = "order.promoted"
	EventOrderStatusChanged  = "order.status_changed"
	EventPaymentRecorded     = "payment.recorded"
)

// KitchenEvent is published after a lifecycle operation commits.
type KitchenEvent struct {
	Type         string           `json:"type"`
	RestaurantID int              `json:"restaurantId"`
	TicketID     *uint            `json:"ticketId,omitempty"`
	OrderID      *uint            `json:"orderId,omitempty"`
	Number       string           `json:"number,omitempty"`
	TableID      *int             `json:"tableId,omitempty"`
	Status       string           `json:"status,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	OccurredAt   time.Time        `json:"occurredAt"`
}
