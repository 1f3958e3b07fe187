package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// AutoMigrate creates the schema directly from the persistence models. Local
// sqlite development only; production schemas go through the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.UserModel{},
		&models.ResourceModel{},
		&models.EntitlementModel{},
		&models.BlueprintModel{},
		&models.AssignmentModel{},
		&models.AuditLogModel{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}

	logger.Info("schema auto-migration completed")
	return nil
}
