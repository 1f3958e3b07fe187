package models

import (
	"time"

	"github.com/custos-grc/custos/internal/shared/constants"
)

// ResourceModel represents the database persistence model for resources.
type ResourceModel struct {
	ID          uint   `gorm:"primarykey"`
	ResourceID  string `gorm:"uniqueIndex;size:32;not null"`
	TenantID    string `gorm:"size:64;not null;index"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (ResourceModel) TableName() string {
	return constants.TableResources
}
