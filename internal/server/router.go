package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	catalogctrl "tablepos/internal/catalog/controller"
	"tablepos/internal/identity"
	orderctrl "tablepos/internal/order/controller"
)

type RouterOptions struct {
	Resolver             identity.Resolver
	AllowQueryRestaurant bool
}

func NewRouter(catalog *catalogctrl.Controller, lifecycle *orderctrl.LifecycleController, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(identity.Middleware(opts.Resolver, opts.AllowQueryRestaurant, logger))
		r.Post("/menu-items/search", catalog.HandleSearchMenuItems)
		lifecycle.Routes(r)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
