// Package migrate implements the database migration CLI commands.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custos-grc/custos/internal/infrastructure/config"
	"github.com/custos-grc/custos/internal/infrastructure/database"
	"github.com/custos-grc/custos/internal/infrastructure/migration"
	"github.com/custos-grc/custos/internal/shared/constants"
	"github.com/custos-grc/custos/internal/shared/logger"
)

var (
	env  string
	auto bool
)

// NewCommand creates the migrate command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, rolling back, and checking status.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "Create the schema from the persistence models instead of SQL migrations (sqlite development only)")
	return cmd
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE:  runDown,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, nil
}

func runUp(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	if auto {
		if cfg.Database.Driver != "sqlite" {
			return fmt.Errorf("auto-migration is restricted to the sqlite driver")
		}
		return migration.AutoMigrate(database.Get())
	}

	return migration.Up(cmd.Context(), database.Get(), cfg.Database.Driver)
}

func runDown(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	return migration.Down(cmd.Context(), database.Get(), cfg.Database.Driver)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	return migration.Status(cmd.Context(), database.Get(), cfg.Database.Driver)
}
