// Package server implements the server CLI command.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/custos-grc/custos/internal/infrastructure/scheduler"
	"github.com/custos-grc/custos/internal/interfaces/cli/bootstrap"
	httpiface "github.com/custos-grc/custos/internal/interfaces/http"
	"github.com/custos-grc/custos/internal/interfaces/http/handlers"
	"github.com/custos-grc/custos/internal/shared/constants"
)

var env string

// NewCommand creates the server command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the reconciliation engine HTTP server",
		Long:  `Start the HTTP server, and when enabled, the background scheduler for ticket synchronization and drift recomputation.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")

	return cmd
}

func run(_ *cobra.Command, _ []string) error {
	app, err := bootstrap.New(bootstrap.Options{Env: env})
	if err != nil {
		return err
	}
	defer app.Close()

	gin.SetMode(ginModeFor(app.Config.Server.Mode))

	defaultTenant := "default"
	if len(app.Config.Tenants) > 0 {
		defaultTenant = app.Config.Tenants[0]
	}

	engine, err := httpiface.NewRouter(&httpiface.RouterConfig{
		AssignmentHandler: handlers.NewAssignmentHandler(app.Lifecycle, app.Logger),
		DriftHandler:      handlers.NewDriftHandler(app.Reconciler, app.Logger),
		TicketSyncHandler: handlers.NewTicketSyncHandler(app.Synchronizer, app.Logger),
		CatalogHandler:    handlers.NewCatalogHandler(app.CatalogRepo, app.Logger),
		AuditHandler:      handlers.NewAuditHandler(app.AuditQuery, app.Logger),
		DB:                app.DB,
		DefaultTenant:     defaultTenant,
		AllowedOrigins:    app.Config.Server.AllowedOrigins,
		Logger:            app.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	var schedulerManager *scheduler.SchedulerManager
	if app.Config.Scheduler.Enabled {
		schedulerManager, err = scheduler.NewSchedulerManager(app.Config.Tenants, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		if err := schedulerManager.RegisterTicketSyncJob(
			scheduler.NewTicketSyncJob(app.Synchronizer), app.Config.Scheduler,
		); err != nil {
			return fmt.Errorf("failed to register ticket sync job: %w", err)
		}
		if err := schedulerManager.RegisterDriftRecomputeJob(
			scheduler.NewDriftRecomputeJob(app.Reconciler), app.Config.Scheduler,
		); err != nil {
			return fmt.Errorf("failed to register drift recompute job: %w", err)
		}
		schedulerManager.Start()
	}

	server := &http.Server{
		Addr:         app.Config.Server.GetAddr(),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Infow("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		app.Logger.Infow("shutdown signal received", "signal", sig.String())
	}

	if schedulerManager != nil {
		if err := schedulerManager.Stop(); err != nil {
			app.Logger.Warnw("failed to stop scheduler", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.Logger.Infow("server stopped")
	return nil
}

func ginModeFor(mode string) string {
	switch mode {
	case constants.EnvProduction, gin.ReleaseMode:
		return gin.ReleaseMode
	case constants.EnvTest:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
