// Package sync implements the one-shot synchronization CLI commands.
package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custos-grc/custos/internal/application/ticketsync"
	"github.com/custos-grc/custos/internal/interfaces/cli/bootstrap"
	"github.com/custos-grc/custos/internal/shared/constants"
)

var (
	env    string
	tenant string
)

// NewCommand creates the sync command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "One-shot synchronization runs",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&tenant, "tenant", "t", "", "Tenant to run for (default: all configured tenants)")

	cmd.AddCommand(
		newTicketsCommand(),
		newDriftCommand(),
	)

	return cmd
}

func newTicketsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tickets",
		Short: "Pull the ticket queues once and apply approved and done tickets",
		RunE:  runTickets,
	}
}

func newDriftCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "Recompute drift reports for every enabled user",
		RunE:  runDrift,
	}
}

func runTickets(cmd *cobra.Command, _ []string) error {
	app, err := bootstrap.New(bootstrap.Options{Env: env, PromptJiraToken: true})
	if err != nil {
		return err
	}
	defer app.Close()

	for _, tenantID := range targetTenants(app.Config.Tenants) {
		report, err := app.Synchronizer.Sync(cmd.Context(), tenantID)
		if err != nil {
			return fmt.Errorf("ticket sync failed for tenant %s: %w", tenantID, err)
		}

		counts := report.Counts()
		app.Logger.Infow("ticket sync completed",
			"tenant_id", tenantID,
			"pending", report.PendingCount,
			"applied", counts[ticketsync.OutcomeApplied],
			"noop", counts[ticketsync.OutcomeNoop],
			"skipped", counts[ticketsync.OutcomeSkipped],
			"failed", counts[ticketsync.OutcomeFailed],
		)
	}
	return nil
}

func runDrift(cmd *cobra.Command, _ []string) error {
	app, err := bootstrap.New(bootstrap.Options{Env: env})
	if err != nil {
		return err
	}
	defer app.Close()

	for _, tenantID := range targetTenants(app.Config.Tenants) {
		summary, err := app.Reconciler.ReconcileTenant(cmd.Context(), tenantID)
		if err != nil {
			return fmt.Errorf("drift recompute failed for tenant %s: %w", tenantID, err)
		}

		drifted := 0
		for _, report := range summary.Reports {
			if report.HasDrift() {
				drifted++
			}
		}
		app.Logger.Infow("drift recompute completed",
			"tenant_id", tenantID,
			"reports", len(summary.Reports),
			"drifted", drifted,
			"failures", len(summary.Failures),
		)
	}
	return nil
}

func targetTenants(configured []string) []string {
	if tenant != "" {
		return []string{tenant}
	}
	if len(configured) == 0 {
		return []string{"default"}
	}
	return configured
}
