package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchCriteria describes the legacy fuzzy link between a ticket and the
// order promoted from it, used for orders that carry no source ticket id.
type MatchCriteria struct {
	RestaurantID int
	TableID      *int
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	From         time.Time
	To           time.Time
	Tolerance    decimal.Decimal
	Statuses     []OrderStatus
}

func NewMatchCriteria(ticket *Ticket, window time.Duration, tolerance decimal.Decimal) MatchCriteria {
	return MatchCriteria{
		RestaurantID: ticket.RestaurantID,
		TableID:      ticket.TableID,
		Subtotal:     ticket.Subtotal,
		Tax:          ticket.Tax,
		Total:        ticket.Total,
		From:         ticket.CreatedAt,
		To:           ticket.CreatedAt.Add(window),
		Tolerance:    tolerance,
		Statuses:     PromotedOrderStatuses,
	}
}

func (c MatchCriteria) Matches(o *Order) bool {
	if o.RestaurantID != c.RestaurantID || o.SourceTicketID != nil {
		return false
	}
	if !sameTable(o.TableID, c.TableID) {
		return false
	}
	if !WithinTolerance(o.Total, c.Total, c.Tolerance) ||
		!WithinTolerance(o.Subtotal, c.Subtotal, c.Tolerance) ||
		!WithinTolerance(o.Tax, c.Tax, c.Tolerance) {
		return false
	}
	if o.CreatedAt.Before(c.From) || o.CreatedAt.After(c.To) {
		return false
	}
	for _, s := range c.Statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

func sameTable(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
