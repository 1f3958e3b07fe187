package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/mappers"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/shared/db"
)

type AssignmentRepository struct {
	db     *gorm.DB
	mapper mappers.AssignmentMapper
}

func NewAssignmentRepository(database *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{
		db:     database,
		mapper: mappers.NewAssignmentMapper(),
	}
}

func (r *AssignmentRepository) Get(ctx context.Context, assignmentID string) (*assignment.Assignment, error) {
	var model models.AssignmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("assignment_id = ?", assignmentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *AssignmentRepository) FindByUser(ctx context.Context, tenantID, userID string) ([]*assignment.Assignment, error) {
	var modelList []models.AssignmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("assignment_id ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments for user: %w", err)
	}

	return r.toDomainList(modelList)
}

func (r *AssignmentRepository) FindByTicketKey(ctx context.Context, issueKey string) ([]*assignment.Assignment, error) {
	var modelList []models.AssignmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("jira_issue_key = ?", issueKey).
		Order("assignment_id ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments by ticket key: %w", err)
	}

	return r.toDomainList(modelList)
}

func (r *AssignmentRepository) FindActiveByUserAndEntitlement(ctx context.Context, tenantID, userID, entitlementID string) (*assignment.Assignment, error) {
	var model models.AssignmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("tenant_id = ? AND user_id = ? AND entitlement_id = ? AND status = ?",
			tenantID, userID, entitlementID, assignment.StatusActive.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active assignment: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

// Upsert persists the aggregate, inserting on first write and replacing all
// columns on subsequent writes.
func (r *AssignmentRepository) Upsert(ctx context.Context, a *assignment.Assignment) error {
	model := r.mapper.ToModel(a)
	tx := db.GetTxFromContext(ctx, r.db)

	var existing models.AssignmentModel
	err := tx.
		Select("id").
		Where("assignment_id = ?", model.AssignmentID).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up assignment for upsert: %w", err)
	}

	// Save with the primary key set writes every column, so cleared pointer
	// fields become NULL instead of being skipped.
	model.ID = existing.ID
	if err := tx.Save(model).Error; err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) toDomainList(modelList []models.AssignmentModel) ([]*assignment.Assignment, error) {
	assignments := make([]*assignment.Assignment, 0, len(modelList))
	for i := range modelList {
		a, err := r.mapper.ToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
