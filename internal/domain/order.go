package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusReady     OrderStatus = "Ready"
	OrderStatusServed    OrderStatus = "Served"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusPreparing: {},
	OrderStatusReady:     {},
	OrderStatusServed:    {},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	_, ok := orderStatuses[status]
	return status, ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// PromotedOrderStatuses are the statuses an order produced from a ticket can
// be in when the reconciliation matcher looks for it.
var PromotedOrderStatuses = []OrderStatus{
	OrderStatusReady,
	OrderStatusPreparing,
	OrderStatusServed,
	OrderStatusCompleted,
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

const (
	PaymentMethodCash = "Cash"
	HoldOrderNotes    = "Order on hold"
)

type Order struct {
	ID             uint
	RestaurantID   int
	Number         string
	TableID        *int
	SourceTicketID *uint
	OrderType      OrderType
	Customer       Customer
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	PaymentMethod  string
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	Notes          string
	Items          []LineItem
	Payments       []Payment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (o *Order) Totals() Totals {
	return Totals{Subtotal: o.Subtotal, Tax: o.Tax, Total: o.Total}
}

// IsHeld reports whether the order is a placeholder awaiting items and payment.
func (o *Order) IsHeld() bool {
	return o.Status == OrderStatusPending && o.PaymentStatus == PaymentStatusPending
}
