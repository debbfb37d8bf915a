package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tablepos/internal/catalog"
	"tablepos/internal/config"
	"tablepos/internal/identity"
	identityrepo "tablepos/internal/identity/repository"
	"tablepos/internal/infrastructure/mysql"
	"tablepos/internal/infrastructure/rabbitmq"
	"tablepos/internal/order"
	"tablepos/internal/order/usecase"
	"tablepos/internal/server"
)

type eventPublisher interface {
	usecase.EventPublisher
	Close() error
}

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, migrate, zapLogger)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, migrate bool, zapLogger *zap.Logger) error {
	if cfg.Auth.JWTSecret == "" && !cfg.Auth.AllowQueryRestaurant {
		return errors.New("AUTH_JWT_SECRET is required unless AUTH_ALLOW_QUERY_RESTAURANT is set")
	}

	db, err := mysql.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if migrate {
		if err := mysql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
		zapLogger.Info("schema migrated")
	}

	events, err := newEventPublisher(cfg.Broker, zapLogger)
	if err != nil {
		return err
	}
	defer events.Close()

	catalogModule := catalog.NewModule(db, zapLogger)
	lifecycleCtrl, err := order.NewModule(
		db,
		cfg,
		catalogModule.Service,
		identityrepo.NewMySQLTableRepository(db),
		events,
		zapLogger,
	)
	if err != nil {
		return fmt.Errorf("wiring order module: %w", err)
	}

	router := server.NewRouter(catalogModule.Controller, lifecycleCtrl, server.RouterOptions{
		Resolver:             identity.NewTokenResolver(cfg.Auth.JWTSecret),
		AllowQueryRestaurant: cfg.Auth.AllowQueryRestaurant,
	}, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	zapLogger.Info("server stopped gracefully")
	return nil
}

func newEventPublisher(cfg config.BrokerConfig, zapLogger *zap.Logger) (eventPublisher, error) {
	if !cfg.Enabled {
		zapLogger.Info("broker disabled, kitchen events are not published")
		return rabbitmq.NopPublisher{}, nil
	}

	publisher, err := rabbitmq.NewPublisher(cfg, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("connecting to broker: %w", err)
	}
	zapLogger.Info("broker connected", zap.String("exchange", cfg.Exchange))
	return publisher, nil
}
