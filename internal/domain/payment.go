package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordSuccess PaymentRecordStatus = "Success"
	PaymentRecordFailed  PaymentRecordStatus = "Failed"
	PaymentRecordPending PaymentRecordStatus = "Pending"
)

func ParsePaymentRecordStatus(s string) (PaymentRecordStatus, bool) {
	switch PaymentRecordStatus(s) {
	case PaymentRecordSuccess, PaymentRecordFailed, PaymentRecordPending:
		return PaymentRecordStatus(s), true
	}
	return "", false
}

// Payment rows are append-only; an order may accumulate several.
type Payment struct {
	ID            uint
	RestaurantID  int
	OrderID       uint
	Amount        decimal.Decimal
	Method        string
	Status        PaymentRecordStatus
	TransactionID *string
	Notes         string
	CreatedAt     time.Time
}
