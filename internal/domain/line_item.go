package domain

import "github.com/shopspring/decimal"

// LineItem is one captured cart line of a ticket or an order. Name and
// prices are fixed when the line is created.
type LineItem struct {
	ID         uint
	ParentID   uint
	MenuItemID int
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
}

func NewLineItem(menuItemID int, name string, quantity int, unitPrice decimal.Decimal) LineItem {
	unitPrice = RoundMoney(unitPrice)
	return LineItem{
		MenuItemID: menuItemID,
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		LineTotal:  RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
	}
}

// Cart is a validated list of lines with precomputed totals.
type Cart struct {
	Items []LineItem
	Totals
}

func NewCart(items []LineItem, tax decimal.Decimal) *Cart {
	return &Cart{
		Items:  items,
		Totals: ComputeTotals(items, tax),
	}
}

// CopyLines returns the lines detached from their parent so they can be
// inserted under another ticket or order.
func CopyLines(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		item.ID = 0
		item.ParentID = 0
		out[i] = item
	}
	return out
}
