// Package seed loads catalog and user fixtures from a YAML file into the
// database. Seeding is idempotent; records are matched by business key and
// updated in place on re-runs.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/shared/db"
	"github.com/custos-grc/custos/internal/shared/id"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// File is the YAML document layout for a seed file.
type File struct {
	Resources    []ResourceSeed    `yaml:"resources"`
	Entitlements []EntitlementSeed `yaml:"entitlements"`
	Blueprints   []BlueprintSeed   `yaml:"blueprints"`
	Users        []UserSeed        `yaml:"users"`
}

type ResourceSeed struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type EntitlementSeed struct {
	ID              string `yaml:"id"`
	ResourceID      string `yaml:"resource_id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	RiskLevel       string `yaml:"risk_level"`
	IsAdmin         bool   `yaml:"is_admin"`
	ExternalMapping string `yaml:"external_mapping"`
}

type BlueprintSeed struct {
	ID             string   `yaml:"id"`
	JobTitle       string   `yaml:"job_title"`
	DepartmentID   string   `yaml:"department_id"`
	EntitlementIDs []string `yaml:"entitlement_ids"`
}

type UserSeed struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	DisplayName  string `yaml:"display_name"`
	JobTitle     string `yaml:"job_title"`
	DepartmentID string `yaml:"department_id"`
}

// Result counts the records touched by one load.
type Result struct {
	Resources    int
	Entitlements int
	Blueprints   int
	Users        int
}

// Loader applies seed files to the database.
type Loader struct {
	tx     *db.TransactionManager
	logger logger.Interface
}

// NewLoader creates a seed loader.
func NewLoader(gdb *gorm.DB, log logger.Interface) *Loader {
	return &Loader{tx: db.NewTransactionManager(gdb), logger: log}
}

// LoadFile parses the YAML file at path and applies it for the tenant.
func (l *Loader) LoadFile(ctx context.Context, tenantID, path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return l.Load(ctx, tenantID, raw)
}

// Load parses and applies a YAML seed document. The whole document is applied
// in one transaction; a single invalid record rejects the file.
func (l *Loader) Load(ctx context.Context, tenantID string, raw []byte) (*Result, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}

	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	result := &Result{}
	err := l.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := l.tx.GetTx(txCtx)
		if err := l.applyResources(tx, tenantID, file.Resources, result); err != nil {
			return err
		}
		if err := l.applyEntitlements(tx, tenantID, file.Entitlements, result); err != nil {
			return err
		}
		if err := l.applyBlueprints(tx, tenantID, file.Blueprints, result); err != nil {
			return err
		}
		return l.applyUsers(tx, tenantID, file.Users, result)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Infow("seed applied",
		"tenant_id", tenantID,
		"resources", result.Resources,
		"entitlements", result.Entitlements,
		"blueprints", result.Blueprints,
		"users", result.Users,
	)
	return result, nil
}

func (l *Loader) applyResources(tx *gorm.DB, tenantID string, seeds []ResourceSeed, result *Result) error {
	for _, seed := range seeds {
		resourceID := seed.ID
		if resourceID == "" {
			resourceID = id.MustGenerateWithPrefix(id.PrefixResource, id.DefaultLength)
		}

		// Validate through the domain constructor before touching the table.
		if _, err := catalog.NewResource(resourceID, tenantID, seed.Name, seed.Description); err != nil {
			return fmt.Errorf("invalid resource %q: %w", seed.Name, err)
		}

		var existing models.ResourceModel
		err := tx.Where("tenant_id = ? AND name = ?", tenantID, seed.Name).First(&existing).Error
		switch {
		case err == nil:
			existing.Description = seed.Description
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update resource %q: %w", seed.Name, err)
			}
		case isNotFound(err):
			model := models.ResourceModel{
				ResourceID:  resourceID,
				TenantID:    tenantID,
				Name:        seed.Name,
				Description: seed.Description,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create resource %q: %w", seed.Name, err)
			}
		default:
			return err
		}
		result.Resources++
	}
	return nil
}

func (l *Loader) applyEntitlements(tx *gorm.DB, tenantID string, seeds []EntitlementSeed, result *Result) error {
	for _, seed := range seeds {
		entitlementID := seed.ID
		if entitlementID == "" {
			entitlementID = id.MustGenerateWithPrefix(id.PrefixEntitlement, id.DefaultLength)
		}

		var mapping *string
		if seed.ExternalMapping != "" {
			m := seed.ExternalMapping
			mapping = &m
		}

		riskLevel := catalog.RiskLevel(seed.RiskLevel)
		if _, err := catalog.NewEntitlement(
			entitlementID, seed.ResourceID, tenantID, seed.Name, riskLevel, seed.IsAdmin, mapping,
		); err != nil {
			return fmt.Errorf("invalid entitlement %q: %w", seed.Name, err)
		}

		var existing models.EntitlementModel
		err := tx.Where("tenant_id = ? AND name = ?", tenantID, seed.Name).First(&existing).Error
		switch {
		case err == nil:
			existing.ResourceID = seed.ResourceID
			existing.Description = seed.Description
			existing.RiskLevel = seed.RiskLevel
			existing.IsAdmin = seed.IsAdmin
			existing.ExternalMapping = mapping
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update entitlement %q: %w", seed.Name, err)
			}
		case isNotFound(err):
			model := models.EntitlementModel{
				EntitlementID:   entitlementID,
				ResourceID:      seed.ResourceID,
				TenantID:        tenantID,
				Name:            seed.Name,
				Description:     seed.Description,
				RiskLevel:       seed.RiskLevel,
				IsAdmin:         seed.IsAdmin,
				ExternalMapping: mapping,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create entitlement %q: %w", seed.Name, err)
			}
		default:
			return err
		}
		result.Entitlements++
	}
	return nil
}

func (l *Loader) applyBlueprints(tx *gorm.DB, tenantID string, seeds []BlueprintSeed, result *Result) error {
	for _, seed := range seeds {
		blueprintID := seed.ID
		if blueprintID == "" {
			blueprintID = id.MustGenerateWithPrefix(id.PrefixBlueprint, id.DefaultLength)
		}

		if _, err := catalog.NewBlueprint(
			blueprintID, tenantID, seed.JobTitle, seed.DepartmentID, seed.EntitlementIDs,
		); err != nil {
			return fmt.Errorf("invalid blueprint for %q: %w", seed.JobTitle, err)
		}

		encoded, err := json.Marshal(seed.EntitlementIDs)
		if err != nil {
			return fmt.Errorf("failed to encode entitlement IDs for %q: %w", seed.JobTitle, err)
		}

		var existing models.BlueprintModel
		err = tx.Where("tenant_id = ? AND job_title = ? AND department_id = ?",
			tenantID, seed.JobTitle, seed.DepartmentID).First(&existing).Error
		switch {
		case err == nil:
			existing.EntitlementIDs = datatypes.JSON(encoded)
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update blueprint for %q: %w", seed.JobTitle, err)
			}
		case isNotFound(err):
			model := models.BlueprintModel{
				BlueprintID:    blueprintID,
				TenantID:       tenantID,
				JobTitle:       seed.JobTitle,
				DepartmentID:   seed.DepartmentID,
				EntitlementIDs: datatypes.JSON(encoded),
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create blueprint for %q: %w", seed.JobTitle, err)
			}
		default:
			return err
		}
		result.Blueprints++
	}
	return nil
}

func (l *Loader) applyUsers(tx *gorm.DB, tenantID string, seeds []UserSeed, result *Result) error {
	for _, seed := range seeds {
		userID := seed.ID
		if userID == "" {
			userID = id.MustGenerateWithPrefix(id.PrefixUser, id.DefaultLength)
		}

		email := strings.ToLower(seed.Email)
		if _, err := user.NewUser(userID, tenantID, email, seed.DisplayName, seed.JobTitle, seed.DepartmentID); err != nil {
			return fmt.Errorf("invalid user %q: %w", seed.Email, err)
		}

		var existing models.UserModel
		err := tx.Where("tenant_id = ? AND email = ?", tenantID, email).First(&existing).Error
		switch {
		case err == nil:
			existing.DisplayName = seed.DisplayName
			existing.JobTitle = seed.JobTitle
			existing.DepartmentID = seed.DepartmentID
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update user %q: %w", email, err)
			}
		case isNotFound(err):
			model := models.UserModel{
				UserID:       userID,
				TenantID:     tenantID,
				Email:        email,
				DisplayName:  seed.DisplayName,
				JobTitle:     seed.JobTitle,
				DepartmentID: seed.DepartmentID,
				Enabled:      true,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create user %q: %w", email, err)
			}
		default:
			return err
		}
		result.Users++
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
