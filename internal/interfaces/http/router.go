// Package http wires the gin engine, middleware and route groups.
package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/interfaces/http/handlers"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
	"github.com/custos-grc/custos/internal/interfaces/http/routes"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// RouterConfig holds everything the router needs to serve traffic.
type RouterConfig struct {
	AssignmentHandler *handlers.AssignmentHandler
	DriftHandler      *handlers.DriftHandler
	TicketSyncHandler *handlers.TicketSyncHandler
	CatalogHandler    *handlers.CatalogHandler
	AuditHandler      *handlers.AuditHandler

	DB             *gorm.DB
	DefaultTenant  string
	AllowedOrigins []string
	Logger         logger.Interface
}

// NewRouter builds the gin engine with middleware and all route groups
// registered.
func NewRouter(cfg *RouterConfig) (*gin.Engine, error) {
	if err := handlers.RegisterValidations(); err != nil {
		return nil, err
	}

	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(cfg.Logger))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))
	engine.Use(middleware.TenantContext(cfg.DefaultTenant))

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api/v1")

	routes.SetupAssignmentRoutes(api, &routes.AssignmentRouteConfig{
		AssignmentHandler: cfg.AssignmentHandler,
	})
	routes.SetupReconcileRoutes(api, &routes.ReconcileRouteConfig{
		DriftHandler: cfg.DriftHandler,
	})
	routes.SetupTicketRoutes(api, &routes.TicketRouteConfig{
		TicketSyncHandler: cfg.TicketSyncHandler,
	})
	routes.SetupCatalogRoutes(api, &routes.CatalogRouteConfig{
		CatalogHandler: cfg.CatalogHandler,
		AuditHandler:   cfg.AuditHandler,
	})

	return engine, nil
}
