package service

import (
	"context"
	"time"

	"tablepos/internal/domain"
	"tablepos/internal/infrastructure/mysql"
)

type PaymentInserter interface {
	Insert(ctx context.Context, q mysql.DBTX, p domain.Payment) (uint, error)
}

// PaymentRecorder appends payment rows. Callers verify the order first.
type PaymentRecorder struct {
	payments PaymentInserter
	now      func() time.Time
}

func NewPaymentRecorder(payments PaymentInserter, now func() time.Time) *PaymentRecorder {
	return &PaymentRecorder{payments: payments, now: now}
}

func (r *PaymentRecorder) Record(ctx context.Context, q mysql.DBTX, p domain.Payment) (uint, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.Amount = domain.RoundMoney(p.Amount)
	return r.payments.Insert(ctx, q, p)
}
