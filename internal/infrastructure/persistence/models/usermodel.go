package models

import (
	"time"

	"github.com/custos-grc/custos/internal/shared/constants"
)

// UserModel represents the database persistence model for governed users.
type UserModel struct {
	ID              uint   `gorm:"primarykey"`
	UserID          string `gorm:"uniqueIndex;size:32;not null"`
	TenantID        string `gorm:"size:64;not null;uniqueIndex:idx_users_tenant_email"`
	Email           string `gorm:"size:255;not null;uniqueIndex:idx_users_tenant_email"`
	DisplayName     string `gorm:"size:100"`
	JobTitle        string `gorm:"size:100;index"`
	DepartmentID    string `gorm:"size:64"`
	Enabled         bool   `gorm:"not null;default:true;index"`
	OffboardingDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return constants.TableUsers
}
