package scheduler

import (
	"context"

	"github.com/custos-grc/custos/internal/application/reconcile"
	"github.com/custos-grc/custos/internal/application/ticketsync"
)

// TicketSyncJob adapts the ticket synchronizer to the TenantJob shape.
type TicketSyncJob struct {
	synchronizer *ticketsync.Synchronizer
}

// NewTicketSyncJob creates the ticket sync job.
func NewTicketSyncJob(synchronizer *ticketsync.Synchronizer) *TicketSyncJob {
	return &TicketSyncJob{synchronizer: synchronizer}
}

// Execute implements TenantJob.
func (j *TicketSyncJob) Execute(ctx context.Context, tenantID string) (int, error) {
	report, err := j.synchronizer.Sync(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return len(report.Results), nil
}

// DriftRecomputeJob adapts the drift reconciler to the TenantJob shape.
type DriftRecomputeJob struct {
	reconciler *reconcile.DriftReconciler
}

// NewDriftRecomputeJob creates the drift recompute job.
func NewDriftRecomputeJob(reconciler *reconcile.DriftReconciler) *DriftRecomputeJob {
	return &DriftRecomputeJob{reconciler: reconciler}
}

// Execute implements TenantJob.
func (j *DriftRecomputeJob) Execute(ctx context.Context, tenantID string) (int, error) {
	summary, err := j.reconciler.ReconcileTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return len(summary.Reports), nil
}
