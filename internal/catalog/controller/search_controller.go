package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/identity"
)

const maxSearchIDs = 100

type Service interface {
	SearchItems(ctx context.Context, restaurantID int, ids []int) (found []domain.MenuItem, notFoundIDs []int, err error)
}

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) HandleSearchMenuItems(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		c.writeError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req dto.SearchMenuItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateSearchRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	found, notFoundIDs, err := c.service.SearchItems(r.Context(), actor.RestaurantID, req.MenuItemIDs)
	if err != nil {
		logger.Error("search menu items failed", zap.Int("restaurantId", actor.RestaurantID), zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
		return
	}

	items := make([]dto.MenuItemDTO, 0, len(found))
	for _, m := range found {
		items = append(items, dto.MenuItemDTO{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Price:       m.Price,
			Category:    m.Category,
			IsActive:    m.IsActive,
		})
	}

	if notFoundIDs == nil {
		notFoundIDs = []int{}
	}

	c.writeJSON(w, http.StatusOK, dto.SearchMenuItemsResponse{
		TraceID:   traceID,
		MenuItems: items,
		NotFound:  notFoundIDs,
	})
}

func validateSearchRequest(req dto.SearchMenuItemsRequest) error {
	if len(req.MenuItemIDs) == 0 {
		return apperrors.NewValidationError("menuItemIds is required", apperrors.ValidationDetail{
			Field:   "menuItemIds",
			Message: "menuItemIds must not be empty",
		})
	}

	if len(req.MenuItemIDs) > maxSearchIDs {
		msg := "menuItemIds exceeds maximum of 100"
		return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "menuItemIds",
			Message: msg,
		})
	}

	for _, id := range req.MenuItemIDs {
		if id <= 0 {
			msg := "each menuItemId must be a positive integer"
			return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
				Field:   "menuItemIds",
				Message: msg,
			})
		}
	}

	return nil
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   apperrors.CodeInvalidRequest,
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
