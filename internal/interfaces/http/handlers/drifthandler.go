package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/application/reconcile"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils"
)

// DriftHandler handles HTTP requests for drift reconciliation
type DriftHandler struct {
	reconciler *reconcile.DriftReconciler
	logger     logger.Interface
}

// NewDriftHandler creates a new drift handler
func NewDriftHandler(reconciler *reconcile.DriftReconciler, logger logger.Interface) *DriftHandler {
	return &DriftHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// GetUserDrift handles GET /users/:id/drift
// Computes the drift report for one user on demand.
func (h *DriftHandler) GetUserDrift(c *gin.Context) {
	userID := c.Param("id")

	report, err := h.reconciler.ReconcileUser(c.Request.Context(), middleware.TenantID(c), userID)
	if err != nil {
		h.logger.Errorw("failed to compute drift report", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", report)
}

// RecomputeTenant handles POST /reconcile/run
// Triggers a tenant-wide drift recomputation and returns the summary.
func (h *DriftHandler) RecomputeTenant(c *gin.Context) {
	tenantID := middleware.TenantID(c)

	summary, err := h.reconciler.ReconcileTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Errorw("tenant drift recomputation failed", "error", err, "tenant_id", tenantID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drift recomputation completed", summary)
}
