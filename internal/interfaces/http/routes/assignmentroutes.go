package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/interfaces/http/handlers"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
)

// AssignmentRouteConfig holds dependencies for assignment lifecycle routes.
type AssignmentRouteConfig struct {
	AssignmentHandler *handlers.AssignmentHandler
}

// SetupAssignmentRoutes configures assignment lifecycle routes. Mutations
// require an acting principal; reads do not.
func SetupAssignmentRoutes(api *gin.RouterGroup, cfg *AssignmentRouteConfig) {
	assignments := api.Group("/assignments")
	{
		assignments.POST("", middleware.RequireActor(), cfg.AssignmentHandler.Grant)
		assignments.POST("/:id/certify", middleware.RequireActor(), cfg.AssignmentHandler.Certify)
		assignments.POST("/:id/revoke", middleware.RequireActor(), cfg.AssignmentHandler.Revoke)
		assignments.POST("/:id/ticket", middleware.RequireActor(), cfg.AssignmentHandler.AttachTicket)
	}

	users := api.Group("/users")
	{
		users.GET("/:id/assignments", cfg.AssignmentHandler.ListUserAssignments)
		users.GET("/:id/assignments/expired", cfg.AssignmentHandler.ListExpired)
	}
}
