package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/interfaces/http/handlers"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
)

// ReconcileRouteConfig holds dependencies for drift reconciliation routes.
type ReconcileRouteConfig struct {
	DriftHandler *handlers.DriftHandler
}

// SetupReconcileRoutes configures drift reconciliation routes.
func SetupReconcileRoutes(api *gin.RouterGroup, cfg *ReconcileRouteConfig) {
	api.GET("/users/:id/drift", cfg.DriftHandler.GetUserDrift)
	api.POST("/reconcile/run", middleware.RequireActor(), cfg.DriftHandler.RecomputeTenant)
}
