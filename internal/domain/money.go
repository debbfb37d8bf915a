package domain

import "github.com/shopspring/decimal"

// MoneyTolerance is the largest difference at which two amounts are treated as equal.
var MoneyTolerance = decimal.New(1, -2)

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums line totals into a subtotal and adds tax.
func ComputeTotals(items []LineItem, tax decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	subtotal = RoundMoney(subtotal)
	tax = RoundMoney(tax)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Consistent reports whether subtotal + tax equals total and subtotal equals
// the sum of the given lines.
func (t Totals) Consistent(items []LineItem) bool {
	if !WithinTolerance(t.Subtotal.Add(t.Tax), t.Total, MoneyTolerance) {
		return false
	}
	return WithinTolerance(ComputeTotals(items, decimal.Zero).Subtotal, t.Subtotal, MoneyTolerance)
}
