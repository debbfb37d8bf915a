package identity

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
)

type Resolver interface {
	Resolve(tokenStr string) (domain.Actor, error)
}

// Middleware resolves the acting restaurant for every request. A bearer
// token is required unless allowQuery is set, in which case a request
// without one may name its restaurant with ?restaurantId=.
func Middleware(resolver Resolver, allowQuery bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			if header == "" && allowQuery {
				restaurantID, err := strconv.Atoi(r.URL.Query().Get("restaurantId"))
				if err != nil || restaurantID <= 0 {
					unauthorized(w, "restaurantId query parameter must be a positive integer", logger)
					return
				}
				actor := domain.Actor{RestaurantID: restaurantID, Role: "terminal"}
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "missing bearer token", logger)
				return
			}

			actor, err := resolver.Resolve(strings.TrimSpace(tokenStr))
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				unauthorized(w, "invalid token", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string, logger *zap.Logger) {
	response := dto.ErrorResponse{
		TraceID:   uuid.New().String(),
		Status:    http.StatusUnauthorized,
		Code:      "UNAUTHORIZED",
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
