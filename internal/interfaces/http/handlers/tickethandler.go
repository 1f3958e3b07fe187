package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/application/ticketsync"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils"
)

// TicketSyncHandler handles HTTP requests for ticket synchronization
type TicketSyncHandler struct {
	synchronizer *ticketsync.Synchronizer
	logger       logger.Interface
}

// NewTicketSyncHandler creates a new ticket sync handler
func NewTicketSyncHandler(synchronizer *ticketsync.Synchronizer, logger logger.Interface) *TicketSyncHandler {
	return &TicketSyncHandler{
		synchronizer: synchronizer,
		logger:       logger,
	}
}

// TriggerSync handles POST /sync/tickets
// Runs one synchronization pass against the ticket tracker and returns the
// per-ticket report.
func (h *TicketSyncHandler) TriggerSync(c *gin.Context) {
	tenantID := middleware.TenantID(c)

	report, err := h.synchronizer.Sync(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Errorw("ticket sync failed", "error", err, "tenant_id", tenantID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ticket synchronization completed", report)
}
