package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/shared/constants"
)

// AssignmentModel represents the database persistence model for assignments
// This is the anti-corruption layer between domain and database
type AssignmentModel struct {
	ID             uint       `gorm:"primarykey"`
	AssignmentID   string     `gorm:"uniqueIndex;size:32;not null"`
	TenantID       string     `gorm:"size:64;not null;index:idx_assignments_tenant_user"`
	UserID         string     `gorm:"size:32;not null;index:idx_assignments_tenant_user"`
	EntitlementID  string     `gorm:"size:32;not null;index"`
	Status         string     `gorm:"size:20;not null;index"`
	GrantedBy      string     `gorm:"size:64;not null"`
	GrantedAt      time.Time  `gorm:"not null"`
	ValidFrom      time.Time  `gorm:"not null"`
	ValidUntil     *time.Time `gorm:"index"`
	LastReviewedAt *time.Time
	ReviewedBy     *string `gorm:"size:64"`
	OriginGroupID  *string `gorm:"size:128"`
	SyncSource     string  `gorm:"size:20;not null"`
	TicketRef      *string `gorm:"size:64"`
	JiraIssueKey   *string `gorm:"size:64;index"`
	Version        int     `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

// TableName specifies the table name for GORM
func (AssignmentModel) TableName() string {
	return constants.TableAssignments
}

// BeforeCreate hook for GORM
func (a *AssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if a.Version == 0 {
		a.Version = 1
	}
	return nil
}
