package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/infrastructure/mysql"
	"tablepos/internal/order/service"
)

type TicketRepository interface {
	Insert(ctx context.Context, q mysql.DBTX, ticket *domain.Ticket) (uint, error)
	FindByID(ctx context.Context, restaurantID int, id uint) (*domain.Ticket, error)
	FindByIDForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, id uint) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.TicketStatus, at time.Time) error
	NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, q mysql.DBTX, order *domain.Order) (uint, error)
	Overwrite(ctx context.Context, q mysql.DBTX, order *domain.Order) error
	FindByID(ctx context.Context, restaurantID int, id uint) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, id uint) (*domain.Order, error)
	FindHeldForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, tableID *int) (*domain.Order, error)
	UpdateStatus(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.OrderStatus, at time.Time) error
	UpdatePayment(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.PaymentStatus, method string, at time.Time) error
	NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error)
}

type PaymentRepository interface {
	SumSuccessful(ctx context.Context, q mysql.DBTX, restaurantID int, orderID uint) (decimal.Decimal, error)
	FindByOrderID(ctx context.Context, restaurantID int, orderID uint) ([]domain.Payment, error)
}

type Catalog interface {
	LookupItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error)
}

type TableVerifier interface {
	VerifyTable(ctx context.Context, restaurantID int, tableID int) error
}

type NumberGenerator interface {
	Next(ctx context.Context, q mysql.DBTX, checker service.NumberChecker, prefix string, restaurantID int) (string, error)
}

type Matcher interface {
	FindExisting(ctx context.Context, q mysql.DBTX, restaurantID int, ticket *domain.Ticket) (*domain.Order, error)
}

type PaymentRecorder interface {
	Record(ctx context.Context, q mysql.DBTX, p domain.Payment) (uint, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event dto.KitchenEvent) error
}

type LifecycleOptions struct {
	MaxRetryAttempts     int
	TxTimeout            time.Duration
	DefaultPaymentMethod string
	Now                  func() time.Time
}

// LifecycleUseCase drives a cart through ticket, order and payment. Every
// write of one operation happens in a single transaction.
type LifecycleUseCase struct {
	txManager            TransactionManager
	tickets              TicketRepository
	orders               OrderRepository
	payments             PaymentRepository
	catalog              Catalog
	tables               TableVerifier
	numbers              NumberGenerator
	matcher              Matcher
	recorder             PaymentRecorder
	events               EventPublisher
	logger               *zap.Logger
	maxRetryAttempts     int
	txTimeout            time.Duration
	defaultPaymentMethod string
	now                  func() time.Time
}

func NewLifecycleUseCase(
	txManager TransactionManager,
	tickets TicketRepository,
	orders OrderRepository,
	payments PaymentRepository,
	catalog Catalog,
	tables TableVerifier,
	numbers NumberGenerator,
	matcher Matcher,
	recorder PaymentRecorder,
	events EventPublisher,
	logger *zap.Logger,
	opts LifecycleOptions,
) *LifecycleUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = 5 * time.Second
	}
	if opts.DefaultPaymentMethod == "" {
		opts.DefaultPaymentMethod = domain.PaymentMethodCash
	}

	return &LifecycleUseCase{
		txManager:            txManager,
		tickets:              tickets,
		orders:               orders,
		payments:             payments,
		catalog:              catalog,
		tables:               tables,
		numbers:              numbers,
		matcher:              matcher,
		recorder:             recorder,
		events:               events,
		logger:               logger,
		maxRetryAttempts:     opts.MaxRetryAttempts,
		txTimeout:            opts.TxTimeout,
		defaultPaymentMethod: opts.DefaultPaymentMethod,
		now:                  func() time.Time { return opts.Now().UTC() },
	}
}

// CreateTicketOrOrder turns a cart into a kitchen ticket (dine-in) or a paid
// order (takeaway). A takeaway cart fills the table's held order if one exists.
func (uc *LifecycleUseCase) CreateTicketOrOrder(ctx context.Context, actor domain.Actor, req dto.CreateTicketOrOrderRequest) (*dto.CreateResult, error) {
	uc.logger.Info("create ticket or order started", zap.Int("restaurantId", actor.RestaurantID), zap.Int("itemCount", len(req.Items)), zap.String("orderType", req.OrderType))

	orderType := domain.OrderTypeDineIn
	if req.OrderType != "" {
		parsed, ok := domain.ParseOrderType(req.OrderType)
		if !ok {
			return nil, apperrors.NewValidationError("invalid order type", apperrors.ValidationDetail{
				Field:   "orderType",
				Message: "must be DineIn or Takeaway",
			})
		}
		orderType = parsed
	}

	cart, err := uc.prepareCart(ctx, actor, req.Items, req.Tax, req.TableID)
	if err != nil {
		return nil, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = uc.defaultPaymentMethod
	}

	if orderType == domain.OrderTypeTakeaway {
		return uc.createTakeawayOrder(ctx, actor, cart, req, method)
	}

	var ticket *domain.Ticket
	err = uc.inTx(ctx, "create ticket", func(ctx context.Context, tx mysql.Tx) error {
		number, err := uc.numbers.Next(ctx, tx, uc.tickets, service.TicketNumberPrefix, actor.RestaurantID)
		if err != nil {
			return err
		}

		now := uc.now()
		ticket = &domain.Ticket{
			RestaurantID: actor.RestaurantID,
			Number:       number,
			TableID:      req.TableID,
			OrderType:    orderType,
			Customer:     req.Customer.ToDomain(),
			Subtotal:     cart.Subtotal,
			Tax:          cart.Tax,
			Total:        cart.Total,
			Notes:        req.Notes,
			Status:       domain.TicketStatusPending,
			Items:        cart.Items,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		id, err := uc.tickets.Insert(ctx, tx, ticket)
		if err != nil {
			return err
		}
		ticket.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("ticket created", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticket.ID), zap.String("ticketNumber", ticket.Number))
	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventTicketCreated,
		RestaurantID: actor.RestaurantID,
		TicketID:     &ticket.ID,
		Number:       ticket.Number,
		TableID:      ticket.TableID,
		Status:       string(ticket.Status),
	})

	return &dto.CreateResult{TicketID: &ticket.ID, Number: ticket.Number}, nil
}

func (uc *LifecycleUseCase) createTakeawayOrder(ctx context.Context, actor domain.Actor, cart *domain.Cart, req dto.CreateTicketOrOrderRequest, method string) (*dto.CreateResult, error) {
	var (
		order  *domain.Order
		reused bool
	)

	err := uc.inTx(ctx, "create takeaway order", func(ctx context.Context, tx mysql.Tx) error {
		now := uc.now()

		held, err := uc.orders.FindHeldForUpdate(ctx, tx, actor.RestaurantID, req.TableID)
		if err != nil {
			return err
		}

		if held != nil {
			reused = true
			order = held
		} else {
			reused = false
			number, err := uc.numbers.Next(ctx, tx, uc.orders, service.OrderNumberPrefix, actor.RestaurantID)
			if err != nil {
				return err
			}
			order = &domain.Order{
				RestaurantID: actor.RestaurantID,
				Number:       number,
				CreatedAt:    now,
			}
		}

		order.TableID = req.TableID
		order.OrderType = domain.OrderTypeTakeaway
		order.Customer = req.Customer.ToDomain()
		order.Status = domain.OrderStatusPreparing
		order.PaymentStatus = domain.PaymentStatusPaid
		order.PaymentMethod = method
		order.Subtotal = cart.Subtotal
		order.Tax = cart.Tax
		order.Total = cart.Total
		order.Notes = req.Notes
		order.Items = cart.Items
		order.UpdatedAt = now

		if reused {
			if err := uc.orders.Overwrite(ctx, tx, order); err != nil {
				return err
			}
		} else {
			id, err := uc.orders.Insert(ctx, tx, order)
			if err != nil {
				return err
			}
			order.ID = id
		}

		_, err = uc.recorder.Record(ctx, tx, domain.Payment{
			RestaurantID: actor.RestaurantID,
			OrderID:      order.ID,
			Amount:       order.Total,
			Method:       method,
			Status:       domain.PaymentRecordSuccess,
			CreatedAt:    now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("takeaway order created",
		zap.Int("restaurantId", actor.RestaurantID), zap.Uint("orderId", order.ID), zap.String("orderNumber", order.Number), zap.Bool("reusedHeldOrder", reused))

	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventOrderCreated,
		RestaurantID: actor.RestaurantID,
		OrderID:      &order.ID,
		Number:       order.Number,
		TableID:      order.TableID,
		Status:       string(order.Status),
	})
	uc.publishPayment(ctx, actor.RestaurantID, order.ID, order.Total)

	return &dto.CreateResult{OrderID: &order.ID, Number: order.Number, Reused: reused}, nil
}

// HoldOrder parks a cart as an unpaid pending order for the table.
func (uc *LifecycleUseCase) HoldOrder(ctx context.Context, actor domain.Actor, req dto.HoldOrderRequest) (*dto.HoldResult, error) {
	uc.logger.Info("hold order started", zap.Int("restaurantId", actor.RestaurantID), zap.Int("itemCount", len(req.Items)))

	cart, err := uc.prepareCart(ctx, actor, req.Items, req.Tax, req.TableID)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = uc.inTx(ctx, "hold order", func(ctx context.Context, tx mysql.Tx) error {
		number, err := uc.numbers.Next(ctx, tx, uc.orders, service.OrderNumberPrefix, actor.RestaurantID)
		if err != nil {
			return err
		}

		now := uc.now()
		order = &domain.Order{
			RestaurantID:  actor.RestaurantID,
			Number:        number,
			TableID:       req.TableID,
			OrderType:     domain.OrderTypeTakeaway,
			Customer:      req.Customer.ToDomain(),
			Status:        domain.OrderStatusPending,
			PaymentStatus: domain.PaymentStatusPending,
			PaymentMethod: uc.defaultPaymentMethod,
			Subtotal:      cart.Subtotal,
			Tax:           cart.Tax,
			Total:         cart.Total,
			Notes:         domain.HoldOrderNotes,
			Items:         cart.Items,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		id, err := uc.orders.Insert(ctx, tx, order)
		if err != nil {
			return err
		}
		order.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order held", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("orderId", order.ID), zap.String("orderNumber", order.Number))
	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventOrderCreated,
		RestaurantID: actor.RestaurantID,
		OrderID:      &order.ID,
		Number:       order.Number,
		TableID:      order.TableID,
		Status:       string(order.Status),
	})

	return &dto.HoldResult{OrderID: order.ID, Number: order.Number}, nil
}

// SetTicketStatus moves a ticket to a new non-terminal status or cancels it.
// Reaching Ready promotes the ticket to a paid order unless one already
// exists. Completed is handled by CompleteTicket.
func (uc *LifecycleUseCase) SetTicketStatus(ctx context.Context, actor domain.Actor, ticketID uint, rawStatus string) (*dto.TransitionResult, error) {
	status, ok := domain.ParseTicketStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewInvalidStatusError(rawStatus)
	}

	if status == domain.TicketStatusCompleted {
		return uc.CompleteTicket(ctx, actor, ticketID)
	}

	uc.logger.Info("set ticket status started", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticketID), zap.String("status", string(status)))

	var (
		result   *dto.TransitionResult
		promoted *domain.Order
	)

	err := uc.inTx(ctx, "set ticket status", func(ctx context.Context, tx mysql.Tx) error {
		promoted = nil

		ticket, err := uc.tickets.FindByIDForUpdate(ctx, tx, actor.RestaurantID, ticketID)
		if err != nil {
			return err
		}

		if ticket.Status.IsTerminal() {
			return apperrors.NewConflictError(fmt.Sprintf("ticket %d is %s", ticketID, ticket.Status))
		}

		if err := uc.tickets.UpdateStatus(ctx, tx, actor.RestaurantID, ticketID, status, uc.now()); err != nil {
			return err
		}

		result = &dto.TransitionResult{TicketID: ticketID, Status: string(status)}

		if status != domain.TicketStatusReady {
			return nil
		}

		order, created, err := uc.promote(ctx, tx, actor, ticket)
		if err != nil {
			return err
		}

		result.OrderID = &order.ID
		result.OrderNumber = &order.Number
		result.Promoted = created
		if created {
			promoted = order
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("ticket status updated",
		zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticketID), zap.String("status", result.Status), zap.Bool("promoted", result.Promoted))

	uc.publishTransition(ctx, actor.RestaurantID, result, promoted)
	return result, nil
}

// CompleteTicket closes a ticket. A ticket that is Ready and has no order
// yet is promoted first. Completing an already completed ticket returns its
// order without writing.
func (uc *LifecycleUseCase) CompleteTicket(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TransitionResult, error) {
	uc.logger.Info("complete ticket started", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticketID))

	var (
		result      *dto.TransitionResult
		promoted    *domain.Order
		alreadyDone bool
	)

	err := uc.inTx(ctx, "complete ticket", func(ctx context.Context, tx mysql.Tx) error {
		promoted = nil
		alreadyDone = false

		ticket, err := uc.tickets.FindByIDForUpdate(ctx, tx, actor.RestaurantID, ticketID)
		if err != nil {
			return err
		}

		if ticket.Status == domain.TicketStatusCancelled {
			return apperrors.NewConflictError(fmt.Sprintf("ticket %d is %s", ticketID, ticket.Status))
		}

		result = &dto.TransitionResult{TicketID: ticketID, Status: string(domain.TicketStatusCompleted)}

		existing, err := uc.matcher.FindExisting(ctx, tx, actor.RestaurantID, ticket)
		if err != nil {
			return err
		}

		if ticket.Status == domain.TicketStatusCompleted {
			alreadyDone = true
			if existing != nil {
				result.OrderID = &existing.ID
				result.OrderNumber = &existing.Number
			}
			return nil
		}

		now := uc.now()

		switch {
		case existing != nil:
			// Completing the ticket never moves its order backwards.
			if existing.Status == domain.OrderStatusPending || existing.Status == domain.OrderStatusPreparing {
				if err := uc.orders.UpdateStatus(ctx, tx, actor.RestaurantID, existing.ID, domain.OrderStatusReady, now); err != nil {
					return err
				}
			}
			result.OrderID = &existing.ID
			result.OrderNumber = &existing.Number

		case ticket.Status == domain.TicketStatusReady:
			order, err := uc.createPromotedOrder(ctx, tx, actor, ticket)
			if err != nil {
				return err
			}
			promoted = order
			result.OrderID = &order.ID
			result.OrderNumber = &order.Number
			result.Promoted = true
		}

		return uc.tickets.UpdateStatus(ctx, tx, actor.RestaurantID, ticketID, domain.TicketStatusCompleted, now)
	})
	if err != nil {
		return nil, err
	}

	if alreadyDone {
		uc.logger.Debug("ticket already completed", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticketID))
		return result, nil
	}

	uc.logger.Info("ticket completed", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticketID), zap.Bool("promoted", result.Promoted))
	uc.publishTransition(ctx, actor.RestaurantID, result, promoted)
	return result, nil
}

// promote returns the order for the ticket, creating it when the matcher
// finds none. The ticket row must already be locked by tx.
func (uc *LifecycleUseCase) promote(ctx context.Context, tx mysql.Tx, actor domain.Actor, ticket *domain.Ticket) (*domain.Order, bool, error) {
	existing, err := uc.matcher.FindExisting(ctx, tx, actor.RestaurantID, ticket)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		uc.logger.Debug("ticket already promoted", zap.Uint("ticketId", ticket.ID), zap.Uint("orderId", existing.ID))
		return existing, false, nil
	}

	order, err := uc.createPromotedOrder(ctx, tx, actor, ticket)
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

func (uc *LifecycleUseCase) createPromotedOrder(ctx context.Context, tx mysql.Tx, actor domain.Actor, ticket *domain.Ticket) (*domain.Order, error) {
	number, err := uc.numbers.Next(ctx, tx, uc.orders, service.OrderNumberPrefix, actor.RestaurantID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	sourceTicketID := ticket.ID
	order := &domain.Order{
		RestaurantID:   actor.RestaurantID,
		Number:         number,
		TableID:        ticket.TableID,
		SourceTicketID: &sourceTicketID,
		OrderType:      ticket.OrderType,
		Customer:       ticket.Customer,
		Status:         domain.OrderStatusReady,
		PaymentStatus:  domain.PaymentStatusPaid,
		PaymentMethod:  uc.defaultPaymentMethod,
		Subtotal:       ticket.Subtotal,
		Tax:            ticket.Tax,
		Total:          ticket.Total,
		Notes:          ticket.Notes,
		Items:          domain.CopyLines(ticket.Items),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := uc.orders.Insert(ctx, tx, order)
	if err != nil {
		return nil, err
	}
	order.ID = id

	_, err = uc.recorder.Record(ctx, tx, domain.Payment{
		RestaurantID: actor.RestaurantID,
		OrderID:      id,
		Amount:       ticket.Total,
		Method:       uc.defaultPaymentMethod,
		Status:       domain.PaymentRecordSuccess,
		Notes:        "Promoted from " + ticket.Number,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("ticket promoted to order",
		zap.Int("restaurantId", actor.RestaurantID), zap.Uint("ticketId", ticket.ID), zap.Uint("orderId", id), zap.String("orderNumber", number))

	return order, nil
}

// RecordPayment appends a payment to an order. The order becomes Paid once
// its successful payments cover the total.
func (uc *LifecycleUseCase) RecordPayment(ctx context.Context, actor domain.Actor, orderID uint, req dto.RecordPaymentRequest) (*dto.PaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("invalid payment", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be positive",
		})
	}

	status := domain.PaymentRecordSuccess
	if req.Status != "" {
		parsed, ok := domain.ParsePaymentRecordStatus(req.Status)
		if !ok {
			return nil, apperrors.NewInvalidStatusError(req.Status)
		}
		status = parsed
	}

	method := req.Method
	if method == "" {
		method = uc.defaultPaymentMethod
	}

	uc.logger.Info("record payment started", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("orderId", orderID), zap.String("amount", req.Amount.String()))

	var result *dto.PaymentResult
	err := uc.inTx(ctx, "record payment", func(ctx context.Context, tx mysql.Tx) error {
		order, err := uc.orders.FindByIDForUpdate(ctx, tx, actor.RestaurantID, orderID)
		if err != nil {
			return err
		}

		if order.Status == domain.OrderStatusCancelled {
			return apperrors.NewConflictError(fmt.Sprintf("order %d is cancelled", orderID))
		}

		now := uc.now()
		paymentID, err := uc.recorder.Record(ctx, tx, domain.Payment{
			RestaurantID:  actor.RestaurantID,
			OrderID:       orderID,
			Amount:        req.Amount,
			Method:        method,
			Status:        status,
			TransactionID: req.TransactionID,
			Notes:         req.Notes,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}

		result = &dto.PaymentResult{PaymentID: paymentID, OrderID: orderID, PaymentStatus: string(order.PaymentStatus)}

		if status != domain.PaymentRecordSuccess || order.PaymentStatus == domain.PaymentStatusPaid {
			return nil
		}

		paid, err := uc.payments.SumSuccessful(ctx, tx, actor.RestaurantID, orderID)
		if err != nil {
			return err
		}

		if paid.Add(domain.MoneyTolerance).GreaterThanOrEqual(order.Total) {
			if err := uc.orders.UpdatePayment(ctx, tx, actor.RestaurantID, orderID, domain.PaymentStatusPaid, method, now); err != nil {
				return err
			}
			result.PaymentStatus = string(domain.PaymentStatusPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("payment recorded", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("orderId", orderID), zap.Uint("paymentId", result.PaymentID), zap.String("paymentStatus", result.PaymentStatus))
	uc.publishPayment(ctx, actor.RestaurantID, orderID, domain.RoundMoney(req.Amount))

	return result, nil
}

// UpdateOrderStatus sets an order's status. Completed and cancelled orders
// cannot change.
func (uc *LifecycleUseCase) UpdateOrderStatus(ctx context.Context, actor domain.Actor, orderID uint, rawStatus string) (*dto.OrderDTO, error) {
	status, ok := domain.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewInvalidStatusError(rawStatus)
	}

	var order *domain.Order
	err := uc.inTx(ctx, "update order status", func(ctx context.Context, tx mysql.Tx) error {
		var err error
		order, err = uc.orders.FindByIDForUpdate(ctx, tx, actor.RestaurantID, orderID)
		if err != nil {
			return err
		}

		if order.Status.IsTerminal() && order.Status != status {
			return apperrors.NewConflictError(fmt.Sprintf("order %d is %s", orderID, order.Status))
		}

		now := uc.now()
		if err := uc.orders.UpdateStatus(ctx, tx, actor.RestaurantID, orderID, status, now); err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status updated", zap.Int("restaurantId", actor.RestaurantID), zap.Uint("orderId", orderID), zap.String("status", string(status)))
	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventOrderStatusChanged,
		RestaurantID: actor.RestaurantID,
		OrderID:      &order.ID,
		Number:       order.Number,
		TableID:      order.TableID,
		Status:       string(status),
	})

	out := dto.OrderFromDomain(order)
	return &out, nil
}

func (uc *LifecycleUseCase) GetTicket(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TicketDTO, error) {
	ticket, err := uc.tickets.FindByID(ctx, actor.RestaurantID, ticketID)
	if err != nil {
		return nil, classify("get ticket", err)
	}
	out := dto.TicketFromDomain(ticket)
	return &out, nil
}

func (uc *LifecycleUseCase) GetOrder(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderDTO, error) {
	order, err := uc.orders.FindByID(ctx, actor.RestaurantID, orderID)
	if err != nil {
		return nil, classify("get order", err)
	}

	payments, err := uc.payments.FindByOrderID(ctx, actor.RestaurantID, orderID)
	if err != nil {
		return nil, classify("get order payments", err)
	}
	order.Payments = payments

	out := dto.OrderFromDomain(order)
	return &out, nil
}

// prepareCart validates the submitted lines, checks the table and replaces
// names and prices with the catalog's. Nothing is written.
func (uc *LifecycleUseCase) prepareCart(ctx context.Context, actor domain.Actor, items []dto.CartItem, tax *decimal.Decimal, tableID *int) (*domain.Cart, error) {
	taxAmount := decimal.Zero
	if tax != nil {
		taxAmount = *tax
	}

	cart, err := service.ValidateCart(items, taxAmount)
	if err != nil {
		uc.logger.Debug("cart rejected", zap.Int("restaurantId", actor.RestaurantID), zap.Error(err))
		return nil, err
	}

	if tableID != nil {
		if err := uc.tables.VerifyTable(ctx, actor.RestaurantID, *tableID); err != nil {
			return nil, classify("verify table", err)
		}
	}

	menu, err := uc.catalog.LookupItems(ctx, actor.RestaurantID, service.MenuItemIDs(cart))
	if err != nil {
		return nil, classify("catalog lookup", err)
	}

	return service.StampCart(cart, menu)
}

func (uc *LifecycleUseCase) publishTransition(ctx context.Context, restaurantID int, result *dto.TransitionResult, promoted *domain.Order) {
	ticketID := result.TicketID
	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventTicketStatusChanged,
		RestaurantID: restaurantID,
		TicketID:     &ticketID,
		OrderID:      result.OrderID,
		Status:       result.Status,
	})

	if promoted == nil {
		return
	}

	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventOrderPromoted,
		RestaurantID: restaurantID,
		TicketID:     &ticketID,
		OrderID:      &promoted.ID,
		Number:       promoted.Number,
		TableID:      promoted.TableID,
		Status:       string(promoted.Status),
	})
	uc.publishPayment(ctx, restaurantID, promoted.ID, promoted.Total)
}

func (uc *LifecycleUseCase) publishPayment(ctx context.Context, restaurantID int, orderID uint, amount decimal.Decimal) {
	uc.publish(ctx, dto.KitchenEvent{
		Type:         dto.EventPaymentRecorded,
		RestaurantID: restaurantID,
		OrderID:      &orderID,
		Amount:       &amount,
	})
}

// publish runs after commit. A failure is logged and never undoes the
// committed operation.
func (uc *LifecycleUseCase) publish(ctx context.Context, event dto.KitchenEvent) {
	event.OccurredAt = uc.now()
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("event publish failed", zap.String("type", event.Type), zap.Int("restaurantId", event.RestaurantID), zap.Error(err))
	}
}
