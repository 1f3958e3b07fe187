package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/shared/constants"
	"github.com/custos-grc/custos/internal/shared/errors"
	"github.com/custos-grc/custos/internal/shared/utils"
)

const (
	headerTenantID = "X-Tenant-ID"
	headerActorID  = "X-Actor-ID"
)

// TenantContext resolves the tenant for the request from the X-Tenant-ID
// header and stores it in the gin context. Requests without a tenant header
// fall back to the configured default tenant.
func TenantContext(defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(headerTenantID)
		if tenantID == "" {
			tenantID = defaultTenant
		}
		c.Set(constants.ContextKeyTenantID, tenantID)
		c.Next()
	}
}

// RequireActor rejects mutation requests that do not identify the acting
// principal via the X-Actor-ID header. Every audit entry needs an actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(headerActorID)
		if actorID == "" {
			utils.ErrorResponse(c, http.StatusBadRequest,
				string(errors.ErrorTypeBadRequest), "X-Actor-ID header is required")
			c.Abort()
			return
		}
		c.Set(constants.ContextKeyActorID, actorID)
		c.Next()
	}
}

// TenantID returns the tenant resolved by TenantContext.
func TenantID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyTenantID)
}

// ActorID returns the actor resolved by RequireActor.
func ActorID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyActorID)
}
