package mappers

import (
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between User domain entities and
// persistence models.
type UserMapper interface {
	// ToModel converts a user domain entity to a persistence model.
	ToModel(u *user.User) *models.UserModel

	// ToDomain converts a user persistence model to a domain entity.
	ToDomain(model *models.UserModel) (*user.User, error)
}

// UserMapperImpl is the concrete implementation of UserMapper.
type UserMapperImpl struct{}

// NewUserMapper creates a new UserMapper.
func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

// ToModel converts a user domain entity to a persistence model.
func (m *UserMapperImpl) ToModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		UserID:          u.ID(),
		TenantID:        u.TenantID(),
		Email:           u.Email(),
		DisplayName:     u.DisplayName(),
		JobTitle:        u.JobTitle(),
		DepartmentID:    u.DepartmentID(),
		Enabled:         u.Enabled(),
		OffboardingDate: u.OffboardingDate(),
		CreatedAt:       u.CreatedAt(),
		UpdatedAt:       u.UpdatedAt(),
	}
}

// ToDomain converts a user persistence model to a domain entity.
func (m *UserMapperImpl) ToDomain(model *models.UserModel) (*user.User, error) {
	return user.ReconstructUser(
		model.UserID,
		model.TenantID,
		model.Email,
		model.DisplayName,
		model.JobTitle,
		model.DepartmentID,
		model.Enabled,
		model.OffboardingDate,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
