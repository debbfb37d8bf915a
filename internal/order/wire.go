package order

import (
	"database/sql"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"tablepos/internal/config"
	"tablepos/internal/infrastructure/mysql"
	kitchenrepo "tablepos/internal/kitchen/repository"
	"tablepos/internal/order/controller"
	orderrepo "tablepos/internal/order/repository"
	"tablepos/internal/order/service"
	"tablepos/internal/order/usecase"
)

// NewModule wires the ticket, order and payment lifecycle. catalog prices
// carts and tables checks table ownership; both live in other modules.
func NewModule(
	db *sql.DB,
	cfg *config.Config,
	catalog usecase.Catalog,
	tables usecase.TableVerifier,
	events usecase.EventPublisher,
	logger *zap.Logger,
) (*controller.LifecycleController, error) {
	tolerance, err := cfg.Lifecycle.Tolerance()
	if err != nil {
		return nil, err
	}

	ticketRepo := kitchenrepo.NewMySQLTicketRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	paymentRepo := orderrepo.NewMySQLPaymentRepository(db)

	now := func() time.Time { return time.Now().UTC() }

	numbers := service.NewNumberingServiceWithSource(cfg.Lifecycle.NumberMaxAttempts, now, rand.IntN, logger)
	matcher := service.NewReconciliationMatcher(orderRepo, cfg.Lifecycle.MatchWindow, tolerance, logger)
	recorder := service.NewPaymentRecorder(paymentRepo, now)

	uc := usecase.NewLifecycleUseCase(
		mysql.NewTxManager(db),
		ticketRepo,
		orderRepo,
		paymentRepo,
		catalog,
		tables,
		numbers,
		matcher,
		recorder,
		events,
		logger,
		usecase.LifecycleOptions{
			MaxRetryAttempts:     cfg.Lifecycle.MaxRetryAttempts,
			TxTimeout:            cfg.Lifecycle.TxTimeout,
			DefaultPaymentMethod: cfg.Lifecycle.DefaultPaymentMethod,
			Now:                  now,
		},
	)

	return controller.NewLifecycleController(uc, logger), nil
}
