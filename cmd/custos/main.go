package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custos-grc/custos/internal/interfaces/cli/migrate"
	"github.com/custos-grc/custos/internal/interfaces/cli/seed"
	"github.com/custos-grc/custos/internal/interfaces/cli/server"
	"github.com/custos-grc/custos/internal/interfaces/cli/sync"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "custos",
		Short: "Custos - access governance reconciliation engine",
		Long:  `Custos reconciles who should have access with who actually does: it governs assignment lifecycles, resolves blueprint targets, scores drift against the external directory, and synchronizes access tickets.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sync.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
