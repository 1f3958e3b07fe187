package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/interfaces/http/handlers"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
)

// TicketRouteConfig holds dependencies for ticket synchronization routes.
type TicketRouteConfig struct {
	TicketSyncHandler *handlers.TicketSyncHandler
}

// SetupTicketRoutes configures ticket synchronization routes.
func SetupTicketRoutes(api *gin.RouterGroup, cfg *TicketRouteConfig) {
	api.POST("/sync/tickets", middleware.RequireActor(), cfg.TicketSyncHandler.TriggerSync)
}
