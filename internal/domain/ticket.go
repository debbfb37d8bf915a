package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "Pending"
	TicketStatusPreparing TicketStatus = "Preparing"
	TicketStatusReady     TicketStatus = "Ready"
	TicketStatusCompleted TicketStatus = "Completed"
	TicketStatusCancelled TicketStatus = "Cancelled"
)

var ticketStatuses = map[TicketStatus]struct{}{
	TicketStatusPending:   {},
	TicketStatusPreparing: {},
	TicketStatusReady:     {},
	TicketStatusCompleted: {},
	TicketStatusCancelled: {},
}

func ParseTicketStatus(s string) (TicketStatus, bool) {
	status := TicketStatus(s)
	_, ok := ticketStatuses[status]
	return status, ok
}

// IsTerminal reports whether a ticket in this status can no longer change.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DineIn"
	OrderTypeTakeaway OrderType = "Takeaway"
)

func ParseOrderType(s string) (OrderType, bool) {
	switch OrderType(s) {
	case OrderTypeDineIn, OrderTypeTakeaway:
		return OrderType(s), true
	}
	return "", false
}

// Ticket is a kitchen order ticket (KOT) for a dine-in table.
type Ticket struct {
	ID           uint
	RestaurantID int
	Number       string
	TableID      *int
	OrderType    OrderType
	Customer     Customer
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Notes        string
	Status       TicketStatus
	Items        []LineItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Ticket) Totals() Totals {
	return Totals{Subtotal: t.Subtotal, Tax: t.Tax, Total: t.Total}
}
