package models

import (
	"time"

	"github.com/custos-grc/custos/internal/shared/constants"
)

// EntitlementModel represents the database persistence model for catalog
// entitlements.
type EntitlementModel struct {
	ID              uint    `gorm:"primarykey"`
	EntitlementID   string  `gorm:"uniqueIndex;size:32;not null"`
	ResourceID      string  `gorm:"size:32;not null;index"`
	TenantID        string  `gorm:"size:64;not null;index"`
	Name            string  `gorm:"size:200;not null"`
	Description     string  `gorm:"type:text"`
	RiskLevel       string  `gorm:"size:20;not null"`
	IsAdmin         bool    `gorm:"not null;default:false"`
	ExternalMapping *string `gorm:"size:128;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (EntitlementModel) TableName() string {
	return constants.TableEntitlements
}
