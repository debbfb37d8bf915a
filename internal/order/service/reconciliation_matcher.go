package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/infrastructure/mysql"
)

type OrderFinder interface {
	FindBySourceTicket(ctx context.Context, q mysql.DBTX, restaurantID int, ticketID uint) (*domain.Order, error)
	FindLegacyCandidates(ctx context.Context, q mysql.DBTX, c domain.MatchCriteria) ([]domain.Order, error)
}

// ReconciliationMatcher decides whether a ticket has already been promoted
// to an order.
type ReconciliationMatcher struct {
	orders    OrderFinder
	window    time.Duration
	tolerance decimal.Decimal
	logger    *zap.Logger
}

func NewReconciliationMatcher(orders OrderFinder, window time.Duration, tolerance decimal.Decimal, logger *zap.Logger) *ReconciliationMatcher {
	return &ReconciliationMatcher{
		orders:    orders,
		window:    window,
		tolerance: tolerance,
		logger:    logger,
	}
}

// FindExisting returns the order representing the ticket, or nil. Orders
// linked by source ticket id win; otherwise unlinked orders are matched on
// table, amounts and creation window. When several unlinked orders match,
// the lowest id is returned.
func (m *ReconciliationMatcher) FindExisting(ctx context.Context, q mysql.DBTX, restaurantID int, ticket *domain.Ticket) (*domain.Order, error) {
	linked, err := m.orders.FindBySourceTicket(ctx, q, restaurantID, ticket.ID)
	if err != nil {
		return nil, err
	}
	if linked != nil {
		return linked, nil
	}

	criteria := domain.NewMatchCriteria(ticket, m.window, m.tolerance)
	criteria.RestaurantID = restaurantID

	candidates, err := m.orders.FindLegacyCandidates(ctx, q, criteria)
	if err != nil {
		return nil, err
	}

	var matches []domain.Order
	for i := range candidates {
		if criteria.Matches(&candidates[i]) {
			matches = append(matches, candidates[i])
		}
	}

	if len(matches) == 0 {
		return nil, nil
	}

	if len(matches) > 1 {
		ids := make([]uint, len(matches))
		for i, o := range matches {
			ids[i] = o.ID
		}
		m.logger.Warn("ambiguous reconciliation match",
			zap.Int("restaurantId", restaurantID), zap.Uint("ticketId", ticket.ID), zap.Uints("candidateOrderIds", ids))
	}

	match := matches[0]
	for _, o := range matches[1:] {
		if o.ID < match.ID {
			match = o
		}
	}

	return &match, nil
}
