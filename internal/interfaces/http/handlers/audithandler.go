package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/infrastructure/audit"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils"
)

// AuditHandler handles read-only HTTP requests for the audit trail
type AuditHandler struct {
	query  *audit.Query
	logger logger.Interface
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(query *audit.Query, logger logger.Interface) *AuditHandler {
	return &AuditHandler{
		query:  query,
		logger: logger,
	}
}

// List handles GET /audit
// Query parameters:
//   - entity_type: filter by entity type (assignment, user)
//   - entity_id: filter by entity ID
//   - actor_id: filter by acting principal
//   - limit: maximum number of entries (default 100)
func (h *AuditHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation_error", "invalid limit", raw)
			return
		}
		limit = parsed
	}

	records, err := h.query.List(c.Request.Context(), middleware.TenantID(c), audit.Filter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		ActorID:    c.Query("actor_id"),
		Limit:      limit,
	})
	if err != nil {
		h.logger.Errorw("failed to query audit trail", "error", err)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"entries": records})
}
