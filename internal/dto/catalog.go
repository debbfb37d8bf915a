package dto

import "github.com/shopspring/decimal"

type SearchMenuItemsRequest struct {
	MenuItemIDs []int `json:"menuItemIds"`
}

type SearchMenuItemsResponse struct {
	TraceID   string        `json:"traceId"`
	MenuItems []MenuItemDTO `json:"menuItems"`
	NotFound  []int         `json:"notFound"`
}

type MenuItemDTO struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	IsActive    bool            `json:"isActive"`
}
