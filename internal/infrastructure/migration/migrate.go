// Package migration runs schema migrations.
package migration

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/infrastructure/persistence/migrations"
	"github.com/custos-grc/custos/internal/shared/logger"
)

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case "mysql", "":
		return goose.DialectMySQL, nil
	case "sqlite":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *gorm.DB, driver string) error {
	return run(db, driver, func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return err
		}
		for _, r := range results {
			logger.Info("applied migration", "source", r.Source.Path)
		}
		return nil
	})
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *gorm.DB, driver string) error {
	return run(db, driver, func(p *goose.Provider) error {
		result, err := p.Down(ctx)
		if err != nil {
			return err
		}
		logger.Info("rolled back migration", "source", result.Source.Path)
		return nil
	})
}

// Status logs the state of every known migration.
func Status(ctx context.Context, db *gorm.DB, driver string) error {
	return run(db, driver, func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			logger.Info("migration status",
				"source", s.Source.Path,
				"state", s.State,
			)
		}
		return nil
	})
}

func run(db *gorm.DB, driver string, fn func(*goose.Provider) error) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	return fn(provider)
}
