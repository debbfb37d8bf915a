package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	"tablepos/internal/catalog/controller"
	"tablepos/internal/catalog/repository"
	"tablepos/internal/catalog/service"
)

type Module struct {
	Controller *controller.Controller
	Service    *service.CatalogService
}

// NewModule wires the menu catalog. The service doubles as the lifecycle's
// price lookup.
func NewModule(db *sql.DB, logger *zap.Logger) *Module {
	repo := repository.NewMySQLMenuItemRepository(db)
	svc := service.NewCatalogService(repo)
	return &Module{
		Controller: controller.NewController(svc, logger),
		Service:    svc,
	}
}
