// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/custos-grc/custos/internal/shared/biztime"
	"github.com/custos-grc/custos/internal/shared/config"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// TenantJob is a scheduled job executed once per configured tenant. Execute
// returns the number of items it processed.
type TenantJob interface {
	Execute(ctx context.Context, tenantID string) (int, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	tenants   []string
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(tenants []string, log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		tenants:   tenants,
		logger:    log,
	}, nil
}

// RegisterTicketSyncJob registers the periodic ticket synchronization pass.
// The pass runs per tenant on a fixed interval and starts immediately.
func (m *SchedulerManager) RegisterTicketSyncJob(job TenantJob, cfg config.SchedulerConfig) error {
	interval := time.Duration(cfg.TicketSyncIntervalMins) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runForTenants(ctx, "ticket-sync", job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("ticketsync"),
		gocron.WithName("ticket-sync"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered ticket sync job", "interval", interval)
	return nil
}

// RegisterDriftRecomputeJob registers the nightly tenant-wide drift
// recomputation at the configured UTC hour.
func (m *SchedulerManager) RegisterDriftRecomputeJob(job TenantJob, cfg config.SchedulerConfig) error {
	hour := cfg.DriftRecomputeHourUTC
	if hour < 0 || hour > 23 {
		hour = 3
	}

	_, err := m.scheduler.NewJob(
		gocron.CronJob(fmt.Sprintf("0 %d * * *", hour), false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			m.runForTenants(ctx, "drift-recompute", job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reconcile"),
		gocron.WithName("drift-recompute"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered drift recompute job", "hour_utc", hour)
	return nil
}

func (m *SchedulerManager) runForTenants(ctx context.Context, name string, job TenantJob) {
	startTime := biztime.NowUTC()

	for _, tenantID := range m.tenants {
		if ctx.Err() != nil {
			return
		}

		count, err := job.Execute(ctx, tenantID)
		if err != nil {
			// Don't log error if context was cancelled (graceful shutdown)
			if ctx.Err() != nil {
				return
			}
			m.logger.Errorw("scheduled job failed",
				"job", name,
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}

		if count > 0 {
			m.logger.Infow("scheduled job completed",
				"job", name,
				"tenant_id", tenantID,
				"processed", count,
				"duration", time.Since(startTime),
			)
		} else {
			m.logger.Debugw("scheduled job completed with nothing to do",
				"job", name,
				"tenant_id", tenantID,
			)
		}
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
