package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/identity"
)

type LifecycleUseCase interface {
	CreateTicketOrOrder(ctx context.Context, actor domain.Actor, req dto.CreateTicketOrOrderRequest) (*dto.CreateResult, error)
	HoldOrder(ctx context.Context, actor domain.Actor, req dto.HoldOrderRequest) (*dto.HoldResult, error)
	SetTicketStatus(ctx context.Context, actor domain.Actor, ticketID uint, status string) (*dto.TransitionResult, error)
	CompleteTicket(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TransitionResult, error)
	RecordPayment(ctx context.Context, actor domain.Actor, orderID uint, req dto.RecordPaymentRequest) (*dto.PaymentResult, error)
	UpdateOrderStatus(ctx context.Context, actor domain.Actor, orderID uint, status string) (*dto.OrderDTO, error)
	GetTicket(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TicketDTO, error)
	GetOrder(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderDTO, error)
}

type LifecycleController struct {
	useCase LifecycleUseCase
	logger  *zap.Logger
}

func NewLifecycleController(useCase LifecycleUseCase, logger *zap.Logger) *LifecycleController {
	return &LifecycleController{
		useCase: useCase,
		logger:  logger,
	}
}

// Routes mounts the ticket and order endpoints on r.
func (c *LifecycleController) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", c.CreateTicketOrOrder)
		r.Post("/hold", c.HoldOrder)
		r.Get("/{orderId}", c.GetOrder)
		r.Patch("/{orderId}/status", c.UpdateOrderStatus)
		r.Post("/{orderId}/payments", c.RecordPayment)
	})
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/{ticketId}", c.GetTicket)
		r.Patch("/{ticketId}/status", c.SetTicketStatus)
		r.Post("/{ticketId}/complete", c.CompleteTicket)
	})
}

// request carries what every handler needs: a trace id, a logger bound to
// it and the resolved actor.
type request struct {
	traceID string
	logger  *zap.Logger
	actor   domain.Actor
}

func (c *LifecycleController) begin(w http.ResponseWriter, r *http.Request) (*request, bool) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity", nil)
		return nil, false
	}

	return &request{
		traceID: traceID,
		logger:  logger.With(zap.Int("restaurantId", actor.RestaurantID)),
		actor:   actor,
	}, true
}

func (c *LifecycleController) CreateTicketOrOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.CreateTicketOrOrderRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	result, err := c.useCase.CreateTicketOrOrder(r.Context(), req.actor, body)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusCreated, result)
}

func (c *LifecycleController) HoldOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.HoldOrderRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	result, err := c.useCase.HoldOrder(r.Context(), req.actor, body)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusCreated, result)
}

func (c *LifecycleController) SetTicketStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	ticketID, ok := c.pathID(w, r, req, "ticketId")
	if !ok {
		return
	}

	var body dto.StatusRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	result, err := c.useCase.SetTicketStatus(r.Context(), req.actor, ticketID, body.Status)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusOK, result)
}

func (c *LifecycleController) CompleteTicket(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	ticketID, ok := c.pathID(w, r, req, "ticketId")
	if !ok {
		return
	}

	result, err := c.useCase.CompleteTicket(r.Context(), req.actor, ticketID)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusOK, result)
}

func (c *LifecycleController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	orderID, ok := c.pathID(w, r, req, "orderId")
	if !ok {
		return
	}

	var body dto.RecordPaymentRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	result, err := c.useCase.RecordPayment(r.Context(), req.actor, orderID, body)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusCreated, result)
}

func (c *LifecycleController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	orderID, ok := c.pathID(w, r, req, "orderId")
	if !ok {
		return
	}

	var body dto.StatusRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	result, err := c.useCase.UpdateOrderStatus(r.Context(), req.actor, orderID, body.Status)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusOK, result)
}

func (c *LifecycleController) GetTicket(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	ticketID, ok := c.pathID(w, r, req, "ticketId")
	if !ok {
		return
	}

	result, err := c.useCase.GetTicket(r.Context(), req.actor, ticketID)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusOK, result)
}

func (c *LifecycleController) GetOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	orderID, ok := c.pathID(w, r, req, "orderId")
	if !ok {
		return
	}

	result, err := c.useCase.GetOrder(r.Context(), req.actor, orderID)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeData(w, req.traceID, http.StatusOK, result)
}

func (c *LifecycleController) pathID(w http.ResponseWriter, r *http.Request, req *request, param string) (uint, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		req.logger.Warn("invalid path id", zap.String("param", param), zap.String("value", raw))
		c.writeError(w, req.traceID, http.StatusBadRequest, apperrors.CodeInvalidRequest, "invalid "+param, []apperrors.ValidationDetail{{
			Field:   param,
			Message: param + " must be a positive integer",
		}})
		return 0, false
	}
	return uint(id), true
}

func (c *LifecycleController) decode(w http.ResponseWriter, r *http.Request, req *request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		req.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, req.traceID, http.StatusBadRequest, apperrors.CodeInvalidRequest, "invalid JSON body", []apperrors.ValidationDetail{{
			Field:   "body",
			Message: "request body must be valid JSON",
		}})
		return false
	}
	return true
}

func (c *LifecycleController) handleUseCaseError(w http.ResponseWriter, req *request, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, req.traceID, http.StatusBadRequest, ve.Code, ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, req.traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, req.traceID, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeError(w, req.traceID, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		req.logger.Warn("request gave up on lock conflicts", zap.Error(err))
		c.writeError(w, req.traceID, http.StatusConflict, "RETRY", "the request conflicted with another one, retry it", nil)
		return
	}

	req.logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, req.traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func (c *LifecycleController) writeData(w http.ResponseWriter, traceID string, status int, data interface{}) {
	c.writeJSON(w, status, dto.Response{
		TraceID:   traceID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func (c *LifecycleController) writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *LifecycleController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
