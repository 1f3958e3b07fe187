// Package seed implements the seed CLI command.
package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custos-grc/custos/internal/infrastructure/config"
	"github.com/custos-grc/custos/internal/infrastructure/database"
	infraseed "github.com/custos-grc/custos/internal/infrastructure/seed"
	"github.com/custos-grc/custos/internal/shared/constants"
	"github.com/custos-grc/custos/internal/shared/logger"
)

var (
	env    string
	tenant string
	file   string
)

// NewCommand creates the seed command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog and user fixtures from a YAML file",
		Long:  `Load resources, entitlements, blueprints and users from a YAML seed file. Records are matched by business key, so re-running a seed file is safe.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&tenant, "tenant", "t", "default", "Tenant to seed")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the YAML seed file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	loader := infraseed.NewLoader(database.Get(), logger.NewLogger())
	result, err := loader.LoadFile(cmd.Context(), tenant, file)
	if err != nil {
		return err
	}

	logger.Info("seed completed",
		"resources", result.Resources,
		"entitlements", result.Entitlements,
		"blueprints", result.Blueprints,
		"users", result.Users,
	)
	return nil
}
