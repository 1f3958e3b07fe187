package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils"
)

// CatalogHandler handles read-only HTTP requests for the access catalog
type CatalogHandler struct {
	catalogRepo catalog.Repository
	logger      logger.Interface
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogRepo catalog.Repository, logger logger.Interface) *CatalogHandler {
	return &CatalogHandler{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// EntitlementResponse is the wire representation of a catalog entitlement.
type EntitlementResponse struct {
	ID              string  `json:"id"`
	ResourceID      string  `json:"resource_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	RiskLevel       string  `json:"risk_level"`
	IsAdmin         bool    `json:"is_admin"`
	ExternalMapping *string `json:"external_mapping,omitempty"`
}

// BlueprintResponse is the wire representation of a job-title blueprint.
type BlueprintResponse struct {
	ID             string   `json:"id"`
	JobTitle       string   `json:"job_title"`
	DepartmentID   string   `json:"department_id,omitempty"`
	EntitlementIDs []string `json:"entitlement_ids"`
}

// ResourceResponse is the wire representation of a catalog resource.
type ResourceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListEntitlements handles GET /catalog/entitlements
func (h *CatalogHandler) ListEntitlements(c *gin.Context) {
	entitlements, err := h.catalogRepo.ListEntitlements(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		h.logger.Errorw("failed to list entitlements", "error", err)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	responses := make([]EntitlementResponse, 0, len(entitlements))
	for _, e := range entitlements {
		responses = append(responses, EntitlementResponse{
			ID:              e.ID(),
			ResourceID:      e.ResourceID(),
			Name:            e.Name(),
			Description:     e.Description(),
			RiskLevel:       e.RiskLevel().String(),
			IsAdmin:         e.IsAdmin(),
			ExternalMapping: e.ExternalMapping(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"entitlements": responses})
}

// ListBlueprints handles GET /catalog/blueprints
func (h *CatalogHandler) ListBlueprints(c *gin.Context) {
	blueprints, err := h.catalogRepo.ListBlueprints(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		h.logger.Errorw("failed to list blueprints", "error", err)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	responses := make([]BlueprintResponse, 0, len(blueprints))
	for _, b := range blueprints {
		responses = append(responses, BlueprintResponse{
			ID:             b.ID(),
			JobTitle:       b.JobTitle(),
			DepartmentID:   b.DepartmentID(),
			EntitlementIDs: b.EntitlementIDs(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"blueprints": responses})
}

// ListResources handles GET /catalog/resources
func (h *CatalogHandler) ListResources(c *gin.Context) {
	resources, err := h.catalogRepo.ListResources(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		h.logger.Errorw("failed to list resources", "error", err)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	responses := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		responses = append(responses, ResourceResponse{
			ID:          r.ID(),
			Name:        r.Name(),
			Description: r.Description(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"resources": responses})
}
