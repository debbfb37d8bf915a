package service

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
)

const (
	maxCartLines    = 100
	maxLineQuantity = 10000
)

// ValidateCart checks a submitted cart and returns it normalized with line
// totals and aggregate totals computed. It has no side effects.
func ValidateCart(items []dto.CartItem, tax decimal.Decimal) (*domain.Cart, error) {
	if len(items) == 0 {
		return nil, apperrors.NewInvalidCartError("cart is empty", apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(items) > maxCartLines {
		return nil, apperrors.NewInvalidCartError("cart has too many lines", apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("items exceeds maximum of %d", maxCartLines),
		})
	}

	var details []apperrors.ValidationDetail
	add := func(idx int, field, message string) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items[" + strconv.Itoa(idx) + "]." + field,
			Message: message,
		})
	}

	lines := make([]domain.LineItem, 0, len(items))
	for idx, item := range items {
		valid := true

		if item.ItemID <= 0 {
			add(idx, "id", "item id is required")
			valid = false
		}
		if item.Name == "" {
			add(idx, "name", "item name is required")
			valid = false
		}
		if item.Price == nil {
			add(idx, "price", "price is required")
			valid = false
		} else if item.Price.IsNegative() {
			add(idx, "price", "price must be non-negative")
			valid = false
		}
		if item.Quantity == nil {
			add(idx, "qty", "quantity is required")
			valid = false
		} else if *item.Quantity < 1 || *item.Quantity > maxLineQuantity {
			add(idx, "qty", fmt.Sprintf("quantity must be between 1 and %d", maxLineQuantity))
			valid = false
		}

		if valid {
			lines = append(lines, domain.NewLineItem(item.ItemID, item.Name, *item.Quantity, *item.Price))
		}
	}

	if tax.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "tax",
			Message: "tax must be non-negative",
		})
	}

	if len(details) > 0 {
		return nil, apperrors.NewInvalidCartError("cart validation failed", details...)
	}

	return domain.NewCart(lines, tax), nil
}

// StampCart replaces each line's name and unit price with the catalog's and
// recomputes totals. Lines whose item is unknown or not orderable make the
// cart invalid.
func StampCart(cart *domain.Cart, menu map[int]domain.MenuItem) (*domain.Cart, error) {
	var details []apperrors.ValidationDetail

	lines := make([]domain.LineItem, 0, len(cart.Items))
	for idx, line := range cart.Items {
		item, ok := menu[line.MenuItemID]
		if !ok || !item.Orderable() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].id",
				Message: fmt.Sprintf("menu item %d is not available", line.MenuItemID),
			})
			continue
		}
		lines = append(lines, domain.NewLineItem(item.ID, item.Name, line.Quantity, item.Price))
	}

	if len(details) > 0 {
		return nil, apperrors.NewInvalidCartError("cart references unavailable menu items", details...)
	}

	return domain.NewCart(lines, cart.Tax), nil
}

// MenuItemIDs returns the distinct item ids of the cart in first-seen order.
func MenuItemIDs(cart *domain.Cart) []int {
	seen := make(map[int]struct{}, len(cart.Items))
	ids := make([]int, 0, len(cart.Items))
	for _, line := range cart.Items {
		if _, ok := seen[line.MenuItemID]; ok {
			continue
		}
		seen[line.MenuItemID] = struct{}{}
		ids = append(ids, line.MenuItemID)
	}
	return ids
}
