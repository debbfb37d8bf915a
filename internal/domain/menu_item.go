package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID           int
	RestaurantID int
	Name         string
	Description  string
	Price        decimal.Decimal
	Category     string
	IsActive     bool
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m MenuItem) Orderable() bool {
	return m.IsActive && !m.IsDeleted
}
