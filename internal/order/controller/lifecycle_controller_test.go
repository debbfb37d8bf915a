package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/identity"
)

type mockLifecycleUseCase struct {
	CreateTicketOrOrderFunc func(ctx context.Context, actor domain.Actor, req dto.CreateTicketOrOrderRequest) (*dto.CreateResult, error)
	HoldOrderFunc           func(ctx context.Context, actor domain.Actor, req dto.HoldOrderRequest) (*dto.HoldResult, error)
	SetTicketStatusFunc     func(ctx context.Context, actor domain.Actor, ticketID uint, status string) (*dto.TransitionResult, error)
	CompleteTicketFunc      func(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TransitionResult, error)
	RecordPaymentFunc       func(ctx context.Context, actor domain.Actor, orderID uint, req dto.RecordPaymentRequest) (*dto.PaymentResult, error)
	UpdateOrderStatusFunc   func(ctx context.Context, actor domain.Actor, orderID uint, status string) (*dto.OrderDTO, error)
	GetTicketFunc           func(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TicketDTO, error)
	GetOrderFunc            func(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderDTO, error)
}

func (m *mockLifecycleUseCase) CreateTicketOrOrder(ctx context.Context, actor domain.Actor, req dto.CreateTicketOrOrderRequest) (*dto.CreateResult, error) {
	return m.CreateTicketOrOrderFunc(ctx, actor, req)
}

func (m *mockLifecycleUseCase) HoldOrder(ctx context.Context, actor domain.Actor, req dto.HoldOrderRequest) (*dto.HoldResult, error) {
	return m.HoldOrderFunc(ctx, actor, req)
}

func (m *mockLifecycleUseCase) SetTicketStatus(ctx context.Context, actor domain.Actor, ticketID uint, status string) (*dto.TransitionResult, error) {
	return m.SetTicketStatusFunc(ctx, actor, ticketID, status)
}

func (m *mockLifecycleUseCase) CompleteTicket(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TransitionResult, error) {
	return m.CompleteTicketFunc(ctx, actor, ticketID)
}

func (m *mockLifecycleUseCase) RecordPayment(ctx context.Context, actor domain.Actor, orderID uint, req dto.RecordPaymentRequest) (*dto.PaymentResult, error) {
	return m.RecordPaymentFunc(ctx, actor, orderID, req)
}

func (m *mockLifecycleUseCase) UpdateOrderStatus(ctx context.Context, actor domain.Actor, orderID uint, status string) (*dto.OrderDTO, error) {
	return m.UpdateOrderStatusFunc(ctx, actor, orderID, status)
}

func (m *mockLifecycleUseCase) GetTicket(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TicketDTO, error) {
	return m.GetTicketFunc(ctx, actor, ticketID)
}

func (m *mockLifecycleUseCase) GetOrder(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderDTO, error) {
	return m.GetOrderFunc(ctx, actor, orderID)
}

var testActor = domain.Actor{RestaurantID: 7, UserID: "u-1", Role: "cashier"}

func newTestRouter(uc LifecycleUseCase, withActor bool) http.Handler {
	ctrl := NewLifecycleController(uc, zap.NewNop())
	r := chi.NewRouter()
	if withActor {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(identity.WithActor(req.Context(), testActor)))
			})
		})
	}
	ctrl.Routes(r)
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var envelope struct {
		TraceID string          `json:"traceId"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.NotEmpty(t, envelope.TraceID)
	require.NoError(t, json.Unmarshal(envelope.Data, into))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func uintPtr(v uint) *uint { return &v }

func TestCreateTicketOrOrder_Created(t *testing.T) {
	var gotActor domain.Actor
	var gotReq dto.CreateTicketOrOrderRequest
	uc := &mockLifecycleUseCase{
		CreateTicketOrOrderFunc: func(ctx context.Context, actor domain.Actor, req dto.CreateTicketOrOrderRequest) (*dto.CreateResult, error) {
			gotActor = actor
			gotReq = req
			return &dto.CreateResult{TicketID: uintPtr(11), Number: "KOT-20260314-0001"}, nil
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodPost, "/orders",
		`{"items":[{"id":10,"name":"Tea","qty":2,"price":"40"}],"tableId":3,"orderType":"DineIn"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testActor, gotActor)
	require.Len(t, gotReq.Items, 1)
	assert.Equal(t, 10, gotReq.Items[0].ItemID)
	require.NotNil(t, gotReq.TableID)
	assert.Equal(t, 3, *gotReq.TableID)

	var result dto.CreateResult
	decodeData(t, rec, &result)
	require.NotNil(t, result.TicketID)
	assert.Equal(t, uint(11), *result.TicketID)
	assert.Equal(t, "KOT-20260314-0001", result.Number)
}

func TestCreateTicketOrOrder_InvalidJSON(t *testing.T) {
	rec := serve(t, newTestRouter(&mockLifecycleUseCase{}, true), http.MethodPost, "/orders", `{"items":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeInvalidRequest, resp.Code)
	assert.NotEmpty(t, resp.TraceID)
}

func TestCreateTicketOrOrder_MissingIdentity(t *testing.T) {
	rec := serve(t, newTestRouter(&mockLifecycleUseCase{}, false), http.MethodPost, "/orders", `{}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
}

func TestCreateTicketOrOrder_InvalidCart(t *testing.T) {
	uc := &mockLifecycleUseCase{
		CreateTicketOrOrderFunc: func(ctx context.Context, actor domain.Actor, req dto.CreateTicketOrOrderRequest) (*dto.CreateResult, error) {
			return nil, apperrors.NewInvalidCartError("cart is empty", apperrors.ValidationDetail{Field: "items", Message: "at least one item is required"})
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodPost, "/orders", `{"items":[]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeInvalidCart, resp.Code)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "items", resp.Details[0].Field)
}

func TestHoldOrder_Created(t *testing.T) {
	uc := &mockLifecycleUseCase{
		HoldOrderFunc: func(ctx context.Context, actor domain.Actor, req dto.HoldOrderRequest) (*dto.HoldResult, error) {
			return &dto.HoldResult{OrderID: 4, Number: "ORD-20260314-0007"}, nil
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodPost, "/orders/hold", `{"items":[{"id":10,"qty":1,"price":"40"}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var result dto.HoldResult
	decodeData(t, rec, &result)
	assert.Equal(t, uint(4), result.OrderID)
}

func TestSetTicketStatus_PassesStatusAndID(t *testing.T) {
	var gotID uint
	var gotStatus string
	uc := &mockLifecycleUseCase{
		SetTicketStatusFunc: func(ctx context.Context, actor domain.Actor, ticketID uint, status string) (*dto.TransitionResult, error) {
			gotID, gotStatus = ticketID, status
			return &dto.TransitionResult{TicketID: ticketID, Status: status, OrderID: uintPtr(9), Promoted: true}, nil
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodPatch, "/tickets/42/status", `{"status":"Ready"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), gotID)
	assert.Equal(t, "Ready", gotStatus)

	var result dto.TransitionResult
	decodeData(t, rec, &result)
	assert.True(t, result.Promoted)
	require.NotNil(t, result.OrderID)
	assert.Equal(t, uint(9), *result.OrderID)
}

func TestSetTicketStatus_InvalidPathID(t *testing.T) {
	for _, path := range []string{"/tickets/abc/status", "/tickets/0/status", "/tickets/-1/status"} {
		rec := serve(t, newTestRouter(&mockLifecycleUseCase{}, true), http.MethodPatch, path, `{"status":"Ready"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestCompleteTicket_OK(t *testing.T) {
	uc := &mockLifecycleUseCase{
		CompleteTicketFunc: func(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TransitionResult, error) {
			return &dto.TransitionResult{TicketID: ticketID, Status: string(domain.TicketStatusCompleted)}, nil
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodPost, "/tickets/5/complete", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var result dto.TransitionResult
	decodeData(t, rec, &result)
	assert.Equal(t, uint(5), result.TicketID)
}

func TestRecordPayment_Created(t *testing.T) {
	var gotReq dto.RecordPaymentRequest
	uc := &mockLifecycleUseCase{
		RecordPaymentFunc: func(ctx context.Context, actor domain.Actor, orderID uint, req dto.RecordPaymentRequest) (*dto.PaymentResult, error) {
			gotReq = req
			return &dto.PaymentResult{PaymentID: 1, OrderID: orderID, PaymentStatus: "Paid"}, nil
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodPost, "/orders/8/payments", `{"amount":"95.50","method":"Card"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decimal.RequireFromString("95.50").Equal(gotReq.Amount))
	assert.Equal(t, "Card", gotReq.Method)

	var result dto.PaymentResult
	decodeData(t, rec, &result)
	assert.Equal(t, uint(8), result.OrderID)
	assert.Equal(t, "Paid", result.PaymentStatus)
}

func TestGetOrder_OK(t *testing.T) {
	uc := &mockLifecycleUseCase{
		GetOrderFunc: func(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderDTO, error) {
			return &dto.OrderDTO{ID: orderID, Number: "ORD-20260314-0001"}, nil
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodGet, "/orders/3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var result dto.OrderDTO
	decodeData(t, rec, &result)
	assert.Equal(t, uint(3), result.ID)
}

func TestGetTicket_NotFound(t *testing.T) {
	uc := &mockLifecycleUseCase{
		GetTicketFunc: func(ctx context.Context, actor domain.Actor, ticketID uint) (*dto.TicketDTO, error) {
			return nil, apperrors.NewNotFoundError("ticket 3 not found")
		},
	}

	rec := serve(t, newTestRouter(uc, true), http.MethodGet, "/tickets/3", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestUpdateOrderStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid status", apperrors.NewInvalidStatusError("Eaten"), http.StatusBadRequest, apperrors.CodeInvalidStatus},
		{"conflict", apperrors.NewConflictError("order is terminal"), http.StatusConflict, "CONFLICT"},
		{"forbidden", apperrors.NewForbiddenError("not allowed"), http.StatusForbidden, "FORBIDDEN"},
		{"retries exhausted", apperrors.NewDeadlockError("max retries exceeded"), http.StatusConflict, "RETRY"},
		{"internal", apperrors.NewInternalError("update failed", errors.New("connection reset")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockLifecycleUseCase{
				UpdateOrderStatusFunc: func(ctx context.Context, actor domain.Actor, orderID uint, status string) (*dto.OrderDTO, error) {
					return nil, tt.err
				},
			}

			rec := serve(t, newTestRouter(uc, true), http.MethodPatch, "/orders/2/status", `{"status":"Served"}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.NotContains(t, resp.Message, "connection reset")
		})
	}
}
