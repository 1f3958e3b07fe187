package mappers

import (
	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
)

// AssignmentMapper handles the conversion between Assignment domain entities
// and persistence models.
type AssignmentMapper interface {
	// ToModel converts an assignment domain entity to a persistence model.
	ToModel(a *assignment.Assignment) *models.AssignmentModel

	// ToDomain converts an assignment persistence model to a domain entity.
	ToDomain(model *models.AssignmentModel) (*assignment.Assignment, error)
}

// AssignmentMapperImpl is the concrete implementation of AssignmentMapper.
type AssignmentMapperImpl struct{}

// NewAssignmentMapper creates a new AssignmentMapper.
func NewAssignmentMapper() AssignmentMapper {
	return &AssignmentMapperImpl{}
}

// ToModel converts an assignment domain entity to a persistence model.
func (m *AssignmentMapperImpl) ToModel(a *assignment.Assignment) *models.AssignmentModel {
	return &models.AssignmentModel{
		AssignmentID:   a.ID(),
		TenantID:       a.TenantID(),
		UserID:         a.UserID(),
		EntitlementID:  a.EntitlementID(),
		Status:         a.Status().String(),
		GrantedBy:      a.GrantedBy(),
		GrantedAt:      a.GrantedAt(),
		ValidFrom:      a.ValidFrom(),
		ValidUntil:     a.ValidUntil(),
		LastReviewedAt: a.LastReviewedAt(),
		ReviewedBy:     a.ReviewedBy(),
		OriginGroupID:  a.OriginGroupID(),
		SyncSource:     a.SyncSource().String(),
		TicketRef:      a.TicketRef(),
		JiraIssueKey:   a.JiraIssueKey(),
		Version:        a.Version(),
		CreatedAt:      a.CreatedAt(),
		UpdatedAt:      a.UpdatedAt(),
	}
}

// ToDomain converts an assignment persistence model to a domain entity.
func (m *AssignmentMapperImpl) ToDomain(model *models.AssignmentModel) (*assignment.Assignment, error) {
	return assignment.ReconstructAssignment(
		model.AssignmentID,
		model.UserID,
		model.EntitlementID,
		model.TenantID,
		assignment.Status(model.Status),
		model.GrantedBy,
		model.GrantedAt,
		model.ValidFrom,
		model.ValidUntil,
		model.LastReviewedAt,
		model.ReviewedBy,
		model.OriginGroupID,
		assignment.SyncSource(model.SyncSource),
		model.TicketRef,
		model.JiraIssueKey,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
