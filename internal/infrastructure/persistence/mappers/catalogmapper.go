package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
)

// CatalogMapper handles the conversion between catalog domain entities and
// persistence models. The catalog is read-only to the engine, so only the
// model-to-domain direction exists.
type CatalogMapper interface {
	// EntitlementToDomain converts an entitlement persistence model to a domain entity.
	EntitlementToDomain(model *models.EntitlementModel) (*catalog.Entitlement, error)

	// BlueprintToDomain converts a blueprint persistence model to a domain entity.
	BlueprintToDomain(model *models.BlueprintModel) (*catalog.Blueprint, error)

	// ResourceToDomain converts a resource persistence model to a domain entity.
	ResourceToDomain(model *models.ResourceModel) (*catalog.Resource, error)
}

// CatalogMapperImpl is the concrete implementation of CatalogMapper.
type CatalogMapperImpl struct{}

// NewCatalogMapper creates a new CatalogMapper.
func NewCatalogMapper() CatalogMapper {
	return &CatalogMapperImpl{}
}

// EntitlementToDomain converts an entitlement persistence model to a domain entity.
func (m *CatalogMapperImpl) EntitlementToDomain(model *models.EntitlementModel) (*catalog.Entitlement, error) {
	e, err := catalog.NewEntitlement(
		model.EntitlementID,
		model.ResourceID,
		model.TenantID,
		model.Name,
		catalog.RiskLevel(model.RiskLevel),
		model.IsAdmin,
		model.ExternalMapping,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct entitlement %s: %w", model.EntitlementID, err)
	}
	e.SetDescription(model.Description)
	return e, nil
}

// BlueprintToDomain converts a blueprint persistence model to a domain entity.
func (m *CatalogMapperImpl) BlueprintToDomain(model *models.BlueprintModel) (*catalog.Blueprint, error) {
	var entitlementIDs []string
	if len(model.EntitlementIDs) > 0 {
		if err := json.Unmarshal(model.EntitlementIDs, &entitlementIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal blueprint entitlements (id=%s): %w", model.BlueprintID, err)
		}
	}

	return catalog.NewBlueprint(
		model.BlueprintID,
		model.TenantID,
		model.JobTitle,
		model.DepartmentID,
		entitlementIDs,
	)
}

// ResourceToDomain converts a resource persistence model to a domain entity.
func (m *CatalogMapperImpl) ResourceToDomain(model *models.ResourceModel) (*catalog.Resource, error) {
	return catalog.NewResource(
		model.ResourceID,
		model.TenantID,
		model.Name,
		model.Description,
	)
}
