package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/mappers"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/shared/db"
)

// CatalogRepository reads the entitlement catalog. The catalog is administered
// by an external system; the engine never writes to these tables.
type CatalogRepository struct {
	db     *gorm.DB
	mapper mappers.CatalogMapper
}

func NewCatalogRepository(database *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		db:     database,
		mapper: mappers.NewCatalogMapper(),
	}
}

func (r *CatalogRepository) ListEntitlements(ctx context.Context, tenantID string) ([]*catalog.Entitlement, error) {
	var modelList []models.EntitlementModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("tenant_id = ?", tenantID).
		Order("entitlement_id ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}

	entitlements := make([]*catalog.Entitlement, 0, len(modelList))
	for i := range modelList {
		e, err := r.mapper.EntitlementToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		entitlements = append(entitlements, e)
	}
	return entitlements, nil
}

func (r *CatalogRepository) ListBlueprints(ctx context.Context, tenantID string) ([]*catalog.Blueprint, error) {
	var modelList []models.BlueprintModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("tenant_id = ?", tenantID).
		Order("blueprint_id ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}

	blueprints := make([]*catalog.Blueprint, 0, len(modelList))
	for i := range modelList {
		bp, err := r.mapper.BlueprintToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		blueprints = append(blueprints, bp)
	}
	return blueprints, nil
}

func (r *CatalogRepository) ListResources(ctx context.Context, tenantID string) ([]*catalog.Resource, error) {
	var modelList []models.ResourceModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("tenant_id = ?", tenantID).
		Order("resource_id ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	resources := make([]*catalog.Resource, 0, len(modelList))
	for i := range modelList {
		res, err := r.mapper.ResourceToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}
