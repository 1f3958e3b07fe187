package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/custos-grc/custos/internal/shared/constants"
)

// BlueprintModel represents the database persistence model for job-title
// blueprints. The entitlement set is stored as a JSON array.
type BlueprintModel struct {
	ID             uint           `gorm:"primarykey"`
	BlueprintID    string         `gorm:"uniqueIndex;size:32;not null"`
	TenantID       string         `gorm:"size:64;not null;index:idx_blueprints_tenant_title"`
	JobTitle       string         `gorm:"size:100;not null;index:idx_blueprints_tenant_title"`
	DepartmentID   string         `gorm:"size:64"`
	EntitlementIDs datatypes.JSON `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (BlueprintModel) TableName() string {
	return constants.TableBlueprints
}
