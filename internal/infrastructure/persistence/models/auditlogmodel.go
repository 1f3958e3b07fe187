package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/custos-grc/custos/internal/shared/constants"
)

// AuditLogModel represents the database persistence model for audit entries.
// Rows are append-only; nothing in the engine updates or deletes them.
type AuditLogModel struct {
	ID             uint           `gorm:"primarykey"`
	TenantID       string         `gorm:"size:64;not null;index"`
	ActorID        string         `gorm:"size:64;not null;index"`
	Action         string         `gorm:"size:100;not null"`
	EntityType     string         `gorm:"size:32;not null;index:idx_audit_logs_entity"`
	EntityID       string         `gorm:"size:64;not null;index:idx_audit_logs_entity"`
	BeforeSnapshot datatypes.JSON
	AfterSnapshot  datatypes.JSON
	OccurredAt     time.Time `gorm:"not null;index"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (AuditLogModel) TableName() string {
	return constants.TableAuditLogs
}
