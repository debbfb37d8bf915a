package dto

import "github.com/shopspring/decimal"

// CartItem is one submitted line. Pointer fields distinguish a missing value
// from a zero one.
type CartItem struct {
	ItemID   int              `json:"id"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"qty"`
}

type CustomerDTO struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type CreateTicketOrOrderRequest struct {
	Items         []CartItem       `json:"items"`
	TableID       *int             `json:"tableId"`
	OrderType     string           `json:"orderType"`
	Customer      CustomerDTO      `json:"customer"`
	Tax           *decimal.Decimal `json:"tax,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
}

type HoldOrderRequest struct {
	Items    []CartItem       `json:"items"`
	TableID  *int             `json:"tableId"`
	Customer CustomerDTO      `json:"customer"`
	Tax      *decimal.Decimal `json:"tax,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID *string         `json:"transactionId,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}
