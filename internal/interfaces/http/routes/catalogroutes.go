package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/interfaces/http/handlers"
)

// CatalogRouteConfig holds dependencies for catalog routes.
type CatalogRouteConfig struct {
	CatalogHandler *handlers.CatalogHandler
	AuditHandler   *handlers.AuditHandler
}

// SetupCatalogRoutes configures read-only catalog and audit trail routes.
func SetupCatalogRoutes(api *gin.RouterGroup, cfg *CatalogRouteConfig) {
	catalog := api.Group("/catalog")
	{
		catalog.GET("/resources", cfg.CatalogHandler.ListResources)
		catalog.GET("/entitlements", cfg.CatalogHandler.ListEntitlements)
		catalog.GET("/blueprints", cfg.CatalogHandler.ListBlueprints)
	}

	api.GET("/audit", cfg.AuditHandler.List)
}
