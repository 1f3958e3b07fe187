package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/custos-grc/custos/internal/infrastructure/migration"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/infrastructure/seed"
	"github.com/custos-grc/custos/internal/shared/logger"
)

const seedDoc = `
resources:
  - id: res_reporting
    name: Reporting Platform
    description: BI and reporting stack
entitlements:
  - id: ent_reporting
    resource_id: res_reporting
    name: Reporting Viewer
    risk_level: low
    external_mapping: grp-reports
  - id: ent_reporting_admin
    resource_id: res_reporting
    name: Reporting Admin
    risk_level: high
    is_admin: true
blueprints:
  - job_title: Analyst
    entitlement_ids: [ent_reporting]
users:
  - email: Dana@Example.com
    display_name: Dana
    job_title: Analyst
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(gdb))
	return gdb
}

func TestLoad_AppliesAllSections(t *testing.T) {
	gdb := newTestDB(t)
	loader := seed.NewLoader(gdb, logger.NewLogger())

	result, err := loader.Load(context.Background(), "default", []byte(seedDoc))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Resources)
	assert.Equal(t, 2, result.Entitlements)
	assert.Equal(t, 1, result.Blueprints)
	assert.Equal(t, 1, result.Users)

	var u models.UserModel
	require.NoError(t, gdb.Where("tenant_id = ?", "default").First(&u).Error)
	assert.Equal(t, "dana@example.com", u.Email)
	assert.True(t, u.Enabled)
}

func TestLoad_IsIdempotent(t *testing.T) {
	gdb := newTestDB(t)
	loader := seed.NewLoader(gdb, logger.NewLogger())

	_, err := loader.Load(context.Background(), "default", []byte(seedDoc))
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), "default", []byte(seedDoc))
	require.NoError(t, err)

	var count int64
	require.NoError(t, gdb.Model(&models.EntitlementModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, gdb.Model(&models.UserModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoad_UpdatesExistingRecords(t *testing.T) {
	gdb := newTestDB(t)
	loader := seed.NewLoader(gdb, logger.NewLogger())

	_, err := loader.Load(context.Background(), "default", []byte(seedDoc))
	require.NoError(t, err)

	updated := `
entitlements:
  - id: ent_reporting
    resource_id: res_reporting
    name: Reporting Viewer
    risk_level: medium
    external_mapping: grp-reports-v2
`
	_, err = loader.Load(context.Background(), "default", []byte(updated))
	require.NoError(t, err)

	var e models.EntitlementModel
	require.NoError(t, gdb.Where("name = ?", "Reporting Viewer").First(&e).Error)
	assert.Equal(t, "medium", e.RiskLevel)
	require.NotNil(t, e.ExternalMapping)
	assert.Equal(t, "grp-reports-v2", *e.ExternalMapping)
}

func TestLoad_RejectsInvalidRecord(t *testing.T) {
	gdb := newTestDB(t)
	loader := seed.NewLoader(gdb, logger.NewLogger())

	invalid := `
entitlements:
  - name: Orphan
    risk_level: low
`
	_, err := loader.Load(context.Background(), "default", []byte(invalid))
	require.Error(t, err)

	var count int64
	require.NoError(t, gdb.Model(&models.EntitlementModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestLoad_RequiresTenant(t *testing.T) {
	gdb := newTestDB(t)
	loader := seed.NewLoader(gdb, logger.NewLogger())

	_, err := loader.Load(context.Background(), "", []byte(seedDoc))
	require.Error(t, err)
}
