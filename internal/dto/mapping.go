package dto

import "tablepos/internal/domain"

func (c CustomerDTO) ToDomain() domain.Customer {
	return domain.Customer{
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
	}
}

func customerFromDomain(c domain.Customer) CustomerDTO {
	return CustomerDTO{
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
	}
}

func lineItemsFromDomain(items []domain.LineItem) []LineItemDTO {
	out := make([]LineItemDTO, len(items))
	for i, item := range items {
		out[i] = LineItemDTO{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
		}
	}
	return out
}

func TicketFromDomain(t *domain.Ticket) TicketDTO {
	return TicketDTO{
		ID:        t.ID,
		Number:    t.Number,
		TableID:   t.TableID,
		OrderType: string(t.OrderType),
		Customer:  customerFromDomain(t.Customer),
		Status:    string(t.Status),
		Subtotal:  t.Subtotal,
		Tax:       t.Tax,
		Total:     t.Total,
		Notes:     t.Notes,
		Items:     lineItemsFromDomain(t.Items),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func OrderFromDomain(o *domain.Order) OrderDTO {
	payments := make([]PaymentDTO, len(o.Payments))
	for i, p := range o.Payments {
		payments[i] = PaymentDTO{
			ID:            p.ID,
			Amount:        p.Amount,
			Method:        p.Method,
			Status:        string(p.Status),
			TransactionID: p.TransactionID,
			CreatedAt:     p.CreatedAt,
		}
	}

	return OrderDTO{
		ID:             o.ID,
		Number:         o.Number,
		TableID:        o.TableID,
		SourceTicketID: o.SourceTicketID,
		OrderType:      string(o.OrderType),
		Customer:       customerFromDomain(o.Customer),
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  o.PaymentMethod,
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		Total:          o.Total,
		Notes:          o.Notes,
		Items:          lineItemsFromDomain(o.Items),
		Payments:       payments,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
