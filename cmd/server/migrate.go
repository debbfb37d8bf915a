package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tablepos/internal/infrastructure/mysql"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables the API needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zapLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			db, err := mysql.NewConnection(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer db.Close()

			if err := mysql.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrating schema: %w", err)
			}

			zapLogger.Info("schema migrated")
			return nil
		},
	}
}
